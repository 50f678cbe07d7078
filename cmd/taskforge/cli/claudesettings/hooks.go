// Package claudesettings manages the Taskforge hook entry inside Claude
// Code's .claude/settings.json, preserving everything else in the file.
package claudesettings

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/taskforge/cli/cmd/taskforge/cli/jsonutil"
)

// SettingsFileName is the settings file used by Claude Code.
const SettingsFileName = "settings.json"

// HookNameUserPromptSubmit is the single hook verb Taskforge registers. It
// becomes the subcommand `taskforge hooks claude-code user-prompt-submit`.
const HookNameUserPromptSubmit = "user-prompt-submit"

// logsDenyRule blocks Claude from reading Taskforge session logs.
const logsDenyRule = "Read(./.taskforge/logs/**)"

// taskforgeHookPrefixes identify Taskforge hook commands, installed or
// local-dev.
var taskforgeHookPrefixes = []string{
	"taskforge ",
	"go run ${CLAUDE_PROJECT_DIR}/cmd/taskforge/main.go ",
}

// SettingsPath returns the path of .claude/settings.json under repoRoot.
func SettingsPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".claude", SettingsFileName)
}

func promptHookCommand(localDev bool) string {
	if localDev {
		return "go run ${CLAUDE_PROJECT_DIR}/cmd/taskforge/main.go hooks claude-code " + HookNameUserPromptSubmit
	}
	return "taskforge hooks claude-code " + HookNameUserPromptSubmit
}

// InstallHooks registers the UserPromptSubmit hook in .claude/settings.json
// under repoRoot, creating the file when absent. Existing hooks of other
// tools, permissions, and unknown settings fields survive untouched. If force
// is true, stale Taskforge hooks are removed before installing. Returns the
// number of hook entries added.
func InstallHooks(repoRoot string, localDev, force bool) (int, error) {
	settingsPath := SettingsPath(repoRoot)

	var settings Settings
	var rawSettings map[string]json.RawMessage
	var rawPermissions map[string]json.RawMessage

	existingData, readErr := os.ReadFile(settingsPath) //nolint:gosec // path is repo root + fixed suffix
	if readErr == nil {
		if err := json.Unmarshal(existingData, &rawSettings); err != nil {
			return 0, fmt.Errorf("failed to parse existing %s: %w", SettingsFileName, err)
		}
		if hooksRaw, ok := rawSettings["hooks"]; ok {
			if err := json.Unmarshal(hooksRaw, &settings.Hooks); err != nil {
				return 0, fmt.Errorf("failed to parse hooks in %s: %w", SettingsFileName, err)
			}
		}
		if permRaw, ok := rawSettings["permissions"]; ok {
			if err := json.Unmarshal(permRaw, &rawPermissions); err != nil {
				return 0, fmt.Errorf("failed to parse permissions in %s: %w", SettingsFileName, err)
			}
		}
	} else {
		rawSettings = make(map[string]json.RawMessage)
	}

	if rawPermissions == nil {
		rawPermissions = make(map[string]json.RawMessage)
	}

	if force {
		settings.Hooks.UserPromptSubmit = removeTaskforgeHooks(settings.Hooks.UserPromptSubmit)
	}

	command := promptHookCommand(localDev)

	count := 0
	if !hookCommandExists(settings.Hooks.UserPromptSubmit, command) {
		settings.Hooks.UserPromptSubmit = addHookToMatcher(settings.Hooks.UserPromptSubmit, "", command)
		count++
	}

	permissionsChanged := false
	var denyRules []string
	if denyRaw, ok := rawPermissions["deny"]; ok {
		if err := json.Unmarshal(denyRaw, &denyRules); err != nil {
			return 0, fmt.Errorf("failed to parse permissions.deny in %s: %w", SettingsFileName, err)
		}
	}
	if !slices.Contains(denyRules, logsDenyRule) {
		denyRules = append(denyRules, logsDenyRule)
		denyJSON, err := json.Marshal(denyRules)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal permissions.deny: %w", err)
		}
		rawPermissions["deny"] = denyJSON
		permissionsChanged = true
	}

	if count == 0 && !permissionsChanged {
		return 0, nil // already installed
	}

	hooksJSON, err := json.Marshal(settings.Hooks)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal hooks: %w", err)
	}
	rawSettings["hooks"] = hooksJSON

	permJSON, err := json.Marshal(rawPermissions)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal permissions: %w", err)
	}
	rawSettings["permissions"] = permJSON

	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o750); err != nil {
		return 0, fmt.Errorf("failed to create .claude directory: %w", err)
	}

	output, err := jsonutil.MarshalIndentWithNewline(rawSettings, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(settingsPath, output, 0o600); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", SettingsFileName, err)
	}

	return count, nil
}

// UninstallHooks removes Taskforge hook entries from .claude/settings.json.
// Other hooks and settings fields are preserved. A missing settings file is
// not an error.
func UninstallHooks(repoRoot string) error {
	settingsPath := SettingsPath(repoRoot)

	existingData, err := os.ReadFile(settingsPath) //nolint:gosec // path is repo root + fixed suffix
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", SettingsFileName, err)
	}

	var rawSettings map[string]json.RawMessage
	if err := json.Unmarshal(existingData, &rawSettings); err != nil {
		return fmt.Errorf("failed to parse %s: %w", SettingsFileName, err)
	}

	var hooks Hooks
	if hooksRaw, ok := rawSettings["hooks"]; ok {
		if err := json.Unmarshal(hooksRaw, &hooks); err != nil {
			return fmt.Errorf("failed to parse hooks in %s: %w", SettingsFileName, err)
		}
	}

	hooks.UserPromptSubmit = removeTaskforgeHooks(hooks.UserPromptSubmit)

	hooksJSON, err := json.Marshal(hooks)
	if err != nil {
		return fmt.Errorf("failed to marshal hooks: %w", err)
	}
	rawSettings["hooks"] = hooksJSON

	output, err := jsonutil.MarshalIndentWithNewline(rawSettings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(settingsPath, output, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", SettingsFileName, err)
	}
	return nil
}

// AreHooksInstalled reports whether a Taskforge UserPromptSubmit hook is
// present in .claude/settings.json under repoRoot.
func AreHooksInstalled(repoRoot string) bool {
	data, err := os.ReadFile(SettingsPath(repoRoot)) //nolint:gosec // path is repo root + fixed suffix
	if err != nil {
		return false
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return false
	}

	for _, matcher := range settings.Hooks.UserPromptSubmit {
		for _, hook := range matcher.Hooks {
			if isTaskforgeHook(hook.Command) {
				return true
			}
		}
	}
	return false
}

// ParsePromptInput decodes the UserPromptSubmit hook payload from r.
func ParsePromptInput(r io.Reader) (*PromptHookInput, error) {
	var input PromptHookInput
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return nil, fmt.Errorf("failed to parse hook input: %w", err)
	}
	return &input, nil
}

func hookCommandExists(matchers []HookMatcher, command string) bool {
	for _, matcher := range matchers {
		for _, hook := range matcher.Hooks {
			if hook.Command == command {
				return true
			}
		}
	}
	return false
}

func addHookToMatcher(matchers []HookMatcher, matcherName, command string) []HookMatcher {
	entry := HookEntry{
		Type:    "command",
		Command: command,
	}

	for i, matcher := range matchers {
		if matcher.Matcher == matcherName {
			matchers[i].Hooks = append(matchers[i].Hooks, entry)
			return matchers
		}
	}

	return append(matchers, HookMatcher{
		Matcher: matcherName,
		Hooks:   []HookEntry{entry},
	})
}

func isTaskforgeHook(command string) bool {
	for _, prefix := range taskforgeHookPrefixes {
		if strings.HasPrefix(command, prefix) {
			return true
		}
	}
	return false
}

// removeTaskforgeHooks drops Taskforge entries from a matcher list, keeping
// matchers that still have hooks from other tools.
func removeTaskforgeHooks(matchers []HookMatcher) []HookMatcher {
	result := make([]HookMatcher, 0, len(matchers))
	for _, matcher := range matchers {
		filtered := make([]HookEntry, 0, len(matcher.Hooks))
		for _, hook := range matcher.Hooks {
			if !isTaskforgeHook(hook.Command) {
				filtered = append(filtered, hook)
			}
		}
		if len(filtered) > 0 {
			matcher.Hooks = filtered
			result = append(result, matcher)
		}
	}
	return result
}
