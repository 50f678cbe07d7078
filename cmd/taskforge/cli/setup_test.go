package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSettingsDiffShowsAddedLines(t *testing.T) {
	before := "{\n  \"hooks\": {}\n}\n"
	after := "{\n  \"hooks\": {\n    \"UserPromptSubmit\": []\n  }\n}\n"

	var buf bytes.Buffer
	printSettingsDiff(&buf, before, after)

	out := buf.String()
	assert.Contains(t, out, "Changes to .claude/settings.json")
	assert.Contains(t, out, "+ ")
	assert.Contains(t, out, "UserPromptSubmit")
}

func TestPrintSettingsDiffOmitsUnchangedLines(t *testing.T) {
	before := "line-one\nline-two\n"
	after := "line-one\nline-two\nline-three\n"

	var buf bytes.Buffer
	printSettingsDiff(&buf, before, after)

	out := buf.String()
	assert.NotContains(t, out, "line-one")
	assert.Contains(t, out, "line-three")
}

func TestReadFileOrEmpty(t *testing.T) {
	assert.Equal(t, "", readFileOrEmpty(filepath.Join(t.TempDir(), "missing.json")))

	path := filepath.Join(t.TempDir(), "present.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	assert.Equal(t, "{}", readFileOrEmpty(path))
}
