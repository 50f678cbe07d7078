package claudesettings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettingsFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".claude"), 0o750))
	require.NoError(t, os.WriteFile(SettingsPath(dir), []byte(content), 0o600))
}

func readSettings(t *testing.T, dir string) Settings {
	t.Helper()
	data, err := os.ReadFile(SettingsPath(dir))
	require.NoError(t, err)
	var settings Settings
	require.NoError(t, json.Unmarshal(data, &settings))
	return settings
}

func TestInstallHooksFreshInstall(t *testing.T) {
	dir := t.TempDir()

	count, err := InstallHooks(dir, false, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	settings := readSettings(t, dir)
	require.Len(t, settings.Hooks.UserPromptSubmit, 1)
	require.Len(t, settings.Hooks.UserPromptSubmit[0].Hooks, 1)
	entry := settings.Hooks.UserPromptSubmit[0].Hooks[0]
	assert.Equal(t, "command", entry.Type)
	assert.Equal(t, "taskforge hooks claude-code user-prompt-submit", entry.Command)
}

func TestInstallHooksIdempotent(t *testing.T) {
	dir := t.TempDir()

	_, err := InstallHooks(dir, false, false)
	require.NoError(t, err)
	count, err := InstallHooks(dir, false, false)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	settings := readSettings(t, dir)
	require.Len(t, settings.Hooks.UserPromptSubmit, 1)
	assert.Len(t, settings.Hooks.UserPromptSubmit[0].Hooks, 1)
}

func TestInstallHooksLocalDev(t *testing.T) {
	dir := t.TempDir()

	_, err := InstallHooks(dir, true, false)
	require.NoError(t, err)

	settings := readSettings(t, dir)
	entry := settings.Hooks.UserPromptSubmit[0].Hooks[0]
	assert.Contains(t, entry.Command, "go run ${CLAUDE_PROJECT_DIR}/cmd/taskforge/main.go")
}

func TestInstallHooksForceReplacesStaleEntries(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFile(t, dir, `{
  "hooks": {
    "UserPromptSubmit": [
      {"matcher": "", "hooks": [
        {"type": "command", "command": "go run ${CLAUDE_PROJECT_DIR}/cmd/taskforge/main.go hooks claude-code user-prompt-submit"}
      ]}
    ]
  }
}`)

	count, err := InstallHooks(dir, false, true)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	settings := readSettings(t, dir)
	require.Len(t, settings.Hooks.UserPromptSubmit, 1)
	require.Len(t, settings.Hooks.UserPromptSubmit[0].Hooks, 1)
	assert.Equal(t, "taskforge hooks claude-code user-prompt-submit",
		settings.Hooks.UserPromptSubmit[0].Hooks[0].Command)
}

func TestInstallHooksPreservesOtherTools(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFile(t, dir, `{
  "hooks": {
    "UserPromptSubmit": [
      {"matcher": "", "hooks": [{"type": "command", "command": "other-tool prompt-hook"}]}
    ],
    "Stop": [
      {"matcher": "", "hooks": [{"type": "command", "command": "other-tool stop-hook"}]}
    ]
  },
  "model": "opus"
}`)

	_, err := InstallHooks(dir, false, false)
	require.NoError(t, err)

	settings := readSettings(t, dir)
	var commands []string
	for _, m := range settings.Hooks.UserPromptSubmit {
		for _, h := range m.Hooks {
			commands = append(commands, h.Command)
		}
	}
	assert.Contains(t, commands, "other-tool prompt-hook")
	assert.Contains(t, commands, "taskforge hooks claude-code user-prompt-submit")
	require.Len(t, settings.Hooks.Stop, 1)
	assert.Equal(t, "other-tool stop-hook", settings.Hooks.Stop[0].Hooks[0].Command)

	// Unknown top-level fields survive the rewrite
	data, err := os.ReadFile(SettingsPath(dir))
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "model")
}

func TestInstallHooksAddsLogsDenyRule(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFile(t, dir, `{
  "permissions": {
    "deny": ["Bash(rm -rf *)"]
  }
}`)

	_, err := InstallHooks(dir, false, false)
	require.NoError(t, err)

	data, err := os.ReadFile(SettingsPath(dir))
	require.NoError(t, err)
	var raw struct {
		Permissions struct {
			Deny []string `json:"deny"`
		} `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw.Permissions.Deny, "Bash(rm -rf *)")
	assert.Contains(t, raw.Permissions.Deny, "Read(./.taskforge/logs/**)")
}

func TestUninstallHooksRemovesOnlyTaskforgeEntries(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFile(t, dir, `{
  "hooks": {
    "UserPromptSubmit": [
      {"matcher": "", "hooks": [
        {"type": "command", "command": "taskforge hooks claude-code user-prompt-submit"},
        {"type": "command", "command": "other-tool prompt-hook"}
      ]}
    ]
  }
}`)

	require.NoError(t, UninstallHooks(dir))

	settings := readSettings(t, dir)
	require.Len(t, settings.Hooks.UserPromptSubmit, 1)
	require.Len(t, settings.Hooks.UserPromptSubmit[0].Hooks, 1)
	assert.Equal(t, "other-tool prompt-hook", settings.Hooks.UserPromptSubmit[0].Hooks[0].Command)
}

func TestUninstallHooksMissingFileIsNoop(t *testing.T) {
	assert.NoError(t, UninstallHooks(t.TempDir()))
}

func TestAreHooksInstalled(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, AreHooksInstalled(dir))

	_, err := InstallHooks(dir, false, false)
	require.NoError(t, err)
	assert.True(t, AreHooksInstalled(dir))

	require.NoError(t, UninstallHooks(dir))
	assert.False(t, AreHooksInstalled(dir))
}

func TestAreHooksInstalledDetectsLocalDevFormat(t *testing.T) {
	dir := t.TempDir()
	_, err := InstallHooks(dir, true, false)
	require.NoError(t, err)
	assert.True(t, AreHooksInstalled(dir))
}

func TestParsePromptInput(t *testing.T) {
	payload := `{"session_id":"abc-123","transcript_path":"/tmp/t.jsonl","prompt":"/task gh-42","cwd":"/repo"}`

	input, err := ParsePromptInput(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "abc-123", input.SessionID)
	assert.Equal(t, "/tmp/t.jsonl", input.TranscriptPath)
	assert.Equal(t, "/task gh-42", input.Prompt)
	assert.Equal(t, "/repo", input.Cwd)
}

func TestParsePromptInputRejectsMalformedJSON(t *testing.T) {
	_, err := ParsePromptInput(strings.NewReader("not json"))
	assert.Error(t, err)
}
