// Package issues fetches issue content for issue-addressed task sessions.
//
// The fetcher is an opaque external collaborator: its retry and auth concerns
// are out of scope here. The default implementation shells out to the GitHub
// CLI and treats its exit code and output as the source of truth.
package issues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// FetchError indicates the issue content could not be retrieved.
// This is fatal to the provisioning invocation: the task directory is not
// created without its issue text.
type FetchError struct {
	Number string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch issue #%s: %v", e.Number, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the text of an issue by number.
type Fetcher interface {
	FetchIssue(ctx context.Context, number string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, number string) (string, error)

func (f FetcherFunc) FetchIssue(ctx context.Context, number string) (string, error) {
	return f(ctx, number)
}

// GhCLIFetcher fetches issues with the `gh` command.
type GhCLIFetcher struct {
	// Dir is the working directory for the gh invocation; gh resolves the
	// repository from it.
	Dir string
}

var _ Fetcher = (*GhCLIFetcher)(nil)

// ghIssue is the subset of `gh issue view --json` output we consume.
type ghIssue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// FetchIssue runs `gh issue view <number> --json number,title,body` and
// renders the result as markdown.
func (g *GhCLIFetcher) FetchIssue(ctx context.Context, number string) (string, error) {
	cmd := exec.CommandContext(ctx, "gh", "issue", "view", number, "--json", "number,title,body")
	cmd.Dir = g.Dir
	output, err := cmd.Output()
	if err != nil {
		detail := err
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			detail = fmt.Errorf("%s: %w", strings.TrimSpace(string(exitErr.Stderr)), err)
		}
		return "", &FetchError{Number: number, Err: detail}
	}

	var issue ghIssue
	if err := json.Unmarshal(output, &issue); err != nil {
		return "", &FetchError{Number: number, Err: fmt.Errorf("parsing gh output: %w", err)}
	}

	return FormatIssueMarkdown(issue.Number, issue.Title, issue.Body), nil
}

// FormatIssueMarkdown renders fetched issue content as the markdown written
// to ISSUE.md inside the task directory.
func FormatIssueMarkdown(number int, title, body string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Issue #%d: %s\n\n", number, title))
	body = strings.TrimSpace(body)
	if body == "" {
		body = "(no description provided)"
	}
	sb.WriteString(body)
	sb.WriteString("\n")
	return sb.String()
}
