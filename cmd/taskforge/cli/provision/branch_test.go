package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/cli/cmd/taskforge/cli/gitexec"
)

func TestEnsureBranchActiveCreatesMissingBranch(t *testing.T) {
	fake := &gitexec.FakeRunner{}

	result, err := EnsureBranchActive(context.Background(), fake, "task/task-1", ".")
	require.NoError(t, err)
	assert.Equal(t, BranchCreated, result)
	assert.Equal(t, "task/task-1", fake.Active)
	assert.Equal(t, []string{"branch-exists", "create-and-checkout"}, fake.Calls)
}

func TestEnsureBranchActiveChecksOutExistingBranch(t *testing.T) {
	fake := &gitexec.FakeRunner{
		Branches: map[string]bool{"task/gh-42": true},
		Active:   "main",
	}

	result, err := EnsureBranchActive(context.Background(), fake, "task/gh-42", ".")
	require.NoError(t, err)
	assert.Equal(t, BranchCheckedOut, result)
	assert.Equal(t, "task/gh-42", fake.Active)
	// No duplicate ref: create-and-checkout never invoked
	assert.NotContains(t, fake.Calls, "create-and-checkout")
}

func TestEnsureBranchActivePropagatesCreateFailure(t *testing.T) {
	createErr := errors.New("refusing to create")
	fake := &gitexec.FakeRunner{CreateErr: createErr}

	_, err := EnsureBranchActive(context.Background(), fake, "task/task-1", ".")
	require.Error(t, err)
	assert.ErrorIs(t, err, createErr)
}

func TestEnsureBranchActivePropagatesCheckoutFailure(t *testing.T) {
	checkoutErr := errors.New("checkout blew up")
	fake := &gitexec.FakeRunner{
		Branches:    map[string]bool{"task/task-1": true},
		CheckoutErr: checkoutErr,
	}

	_, err := EnsureBranchActive(context.Background(), fake, "task/task-1", ".")
	require.Error(t, err)
	assert.ErrorIs(t, err, checkoutErr)
}
