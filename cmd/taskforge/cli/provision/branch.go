package provision

import (
	"context"
	"fmt"

	"github.com/taskforge/cli/cmd/taskforge/cli/gitexec"
)

// BranchResult reports how EnsureBranchActive left the repository.
type BranchResult int

const (
	// BranchCreated means the branch did not exist and was created from the
	// current branch tip.
	BranchCreated BranchResult = iota
	// BranchCheckedOut means an existing branch was checked out.
	BranchCheckedOut
)

// EnsureBranchActive idempotently ensures a local branch named name exists
// and is checked out: checkout-existing when the ref resolves, otherwise
// create-and-checkout from the current branch tip.
//
// Callers treat failure here as non-fatal: directory provisioning has already
// succeeded and must not be rolled back.
func EnsureBranchActive(ctx context.Context, runner gitexec.Runner, name, cwd string) (BranchResult, error) {
	exists, err := runner.BranchExists(ctx, name, cwd)
	if err != nil {
		return 0, fmt.Errorf("failed to check branch %s: %w", name, err)
	}

	if exists {
		if err := runner.Checkout(ctx, name, cwd); err != nil {
			return 0, fmt.Errorf("failed to checkout branch %s: %w", name, err)
		}
		return BranchCheckedOut, nil
	}

	if err := runner.CreateAndCheckout(ctx, name, cwd); err != nil {
		return 0, fmt.Errorf("failed to create branch %s: %w", name, err)
	}
	return BranchCreated, nil
}
