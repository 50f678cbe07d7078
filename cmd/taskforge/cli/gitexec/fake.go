package gitexec

import (
	"context"
)

// FakeRunner is an in-memory Runner for tests. Zero value behaves as a clean
// repository with no branches.
type FakeRunner struct {
	// NotARepo makes VerifyRepository fail with ErrNotARepository.
	NotARepo bool
	// Status is the porcelain status output to report.
	Status string
	// StatusErr, if set, is returned from StatusShort.
	StatusErr error
	// Branches is the set of existing local branch names.
	Branches map[string]bool
	// Active is the currently checked-out branch.
	Active string
	// CheckoutErr, if set, is returned from Checkout.
	CheckoutErr error
	// CreateErr, if set, is returned from CreateAndCheckout.
	CreateErr error

	// Calls records the verbs invoked, in order.
	Calls []string
}

var _ Runner = (*FakeRunner)(nil)

func (f *FakeRunner) VerifyRepository(_ context.Context, _ string) error {
	f.Calls = append(f.Calls, "verify-repository")
	if f.NotARepo {
		return ErrNotARepository
	}
	return nil
}

func (f *FakeRunner) StatusShort(_ context.Context, _ string) (string, error) {
	f.Calls = append(f.Calls, "status-short")
	if f.StatusErr != nil {
		return "", f.StatusErr
	}
	return f.Status, nil
}

func (f *FakeRunner) BranchExists(_ context.Context, name, _ string) (bool, error) {
	f.Calls = append(f.Calls, "branch-exists")
	return f.Branches[name], nil
}

func (f *FakeRunner) Checkout(_ context.Context, name, _ string) error {
	f.Calls = append(f.Calls, "checkout")
	if f.CheckoutErr != nil {
		return f.CheckoutErr
	}
	if !f.Branches[name] {
		return &CommandError{Args: []string{"checkout", name}, Output: "pathspec '" + name + "' did not match"}
	}
	f.Active = name
	return nil
}

func (f *FakeRunner) CreateAndCheckout(_ context.Context, name, _ string) error {
	f.Calls = append(f.Calls, "create-and-checkout")
	if f.CreateErr != nil {
		return f.CreateErr
	}
	if f.Branches == nil {
		f.Branches = make(map[string]bool)
	}
	f.Branches[name] = true
	f.Active = name
	return nil
}
