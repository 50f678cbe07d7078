// Package gitexec drives the git command-line tool through a narrow
// capability interface. Exit codes and captured output are the source of
// truth; no state is kept between calls.
//
// The Runner interface exists so the workspace guard and the provisioning
// orchestrator can be tested against a fake without a real repository.
package gitexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotARepository indicates the working directory is not inside a git
// repository (no metadata directory discoverable).
var ErrNotARepository = errors.New("not a git repository")

// DirtyWorkingTreeError indicates the working tree has uncommitted changes.
// Status carries the short-status text for user display.
type DirtyWorkingTreeError struct {
	Status string
}

func (e *DirtyWorkingTreeError) Error() string {
	return "working tree has uncommitted changes"
}

// CommandError wraps a failed git invocation with its captured output.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), e.Output)
	}
	return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Runner is the capability surface consumed by the provisioner. All
// operations are synchronous and report success/failure via process exit
// status plus captured output text.
type Runner interface {
	// VerifyRepository confirms a git metadata directory is discoverable
	// from cwd. Returns ErrNotARepository otherwise.
	VerifyRepository(ctx context.Context, cwd string) error

	// StatusShort returns the porcelain short-status output for cwd.
	// Empty output means a clean working tree.
	StatusShort(ctx context.Context, cwd string) (string, error)

	// BranchExists reports whether a local branch ref named name resolves.
	BranchExists(ctx context.Context, name, cwd string) (bool, error)

	// Checkout switches to an existing local branch.
	Checkout(ctx context.Context, name, cwd string) error

	// CreateAndCheckout creates a branch from the current branch tip and
	// switches to it.
	CreateAndCheckout(ctx context.Context, name, cwd string) error
}

// ExecRunner implements Runner over the git CLI.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// run executes git with the given arguments in cwd, returning the trimmed
// combined output. No timeout is imposed; a hung git process hangs the
// invocation.
func (ExecRunner) run(ctx context.Context, cwd string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = cwd
	output, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(output))
	if err != nil {
		return text, &CommandError{Args: args, Output: text, Err: err}
	}
	return text, nil
}

// VerifyRepository runs 'git rev-parse --git-dir'.
func (r ExecRunner) VerifyRepository(ctx context.Context, cwd string) error {
	if _, err := r.run(ctx, cwd, "rev-parse", "--git-dir"); err != nil {
		return fmt.Errorf("%w: %v", ErrNotARepository, err)
	}
	return nil
}

// StatusShort runs 'git status --porcelain'.
func (r ExecRunner) StatusShort(ctx context.Context, cwd string) (string, error) {
	out, err := r.run(ctx, cwd, "status", "--porcelain")
	if err != nil {
		return "", fmt.Errorf("failed to query working tree status: %w", err)
	}
	return out, nil
}

// BranchExists runs 'git rev-parse --verify --quiet refs/heads/<name>'.
// A nonzero exit means the ref does not resolve.
func (r ExecRunner) BranchExists(ctx context.Context, name, cwd string) (bool, error) {
	if _, err := r.run(ctx, cwd, "rev-parse", "--verify", "--quiet", "refs/heads/"+name); err != nil {
		return false, nil
	}
	return true, nil
}

// Checkout runs 'git checkout <name>'.
func (r ExecRunner) Checkout(ctx context.Context, name, cwd string) error {
	if _, err := r.run(ctx, cwd, "checkout", name); err != nil {
		return fmt.Errorf("checkout failed: %w", err)
	}
	return nil
}

// CreateAndCheckout runs 'git checkout -b <name>'.
func (r ExecRunner) CreateAndCheckout(ctx context.Context, name, cwd string) error {
	if _, err := r.run(ctx, cwd, "checkout", "-b", name); err != nil {
		return fmt.Errorf("branch creation failed: %w", err)
	}
	return nil
}

// CheckClean is the fail-closed pre-flight gate: it verifies cwd is inside a
// git repository and that the working tree has no uncommitted changes. Both
// checks must pass before any directory or branch mutation occurs.
func CheckClean(ctx context.Context, runner Runner, cwd string) error {
	if err := runner.VerifyRepository(ctx, cwd); err != nil {
		return err
	}

	status, err := runner.StatusShort(ctx, cwd)
	if err != nil {
		return err
	}
	if status != "" {
		return &DirtyWorkingTreeError{Status: status}
	}
	return nil
}
