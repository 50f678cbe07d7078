package issues

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatIssueMarkdown(t *testing.T) {
	got := FormatIssueMarkdown(42, "Fix the billing export", "Exports are truncated.\n")
	assert.Equal(t, "# Issue #42: Fix the billing export\n\nExports are truncated.\n", got)
}

func TestFormatIssueMarkdownEmptyBody(t *testing.T) {
	got := FormatIssueMarkdown(7, "No body", "")
	assert.Contains(t, got, "(no description provided)")
}

func TestFetcherFunc(t *testing.T) {
	f := FetcherFunc(func(_ context.Context, number string) (string, error) {
		return "issue " + number, nil
	})
	text, err := f.FetchIssue(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "issue 42", text)
}

func TestFetchErrorUnwrap(t *testing.T) {
	cause := errors.New("gh: not logged in")
	err := &FetchError{Number: "42", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "#42")
}
