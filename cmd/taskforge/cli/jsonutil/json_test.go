package jsonutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalIndentWithNewline(t *testing.T) {
	data, err := MarshalIndentWithNewline(map[string]string{"key": "value"}, "", "  ")
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasSuffix(s, "\n"), "output must end with a newline")
	assert.Contains(t, s, "  \"key\": \"value\"")
}

func TestMarshalIndentWithNewlineDoesNotEscapeHTML(t *testing.T) {
	data, err := MarshalIndentWithNewline(map[string]string{"cmd": "a && b"}, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), "a && b")
}
