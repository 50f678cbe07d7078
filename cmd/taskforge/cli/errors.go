package cli

import "fmt"

// SilentError wraps an error whose message was already presented to the user.
// main.go suppresses its output and only sets the exit code.
type SilentError struct {
	err error
}

func NewSilentError(err error) *SilentError {
	return &SilentError{err: err}
}

func (e *SilentError) Error() string {
	return e.err.Error()
}

func (e *SilentError) Unwrap() error {
	return e.err
}

// FatalError signals a pre-flight failure that must abort the triggering
// session. main.go exits with the carried code, distinguishing fatal failures
// (exit 2) from ordinary command errors (exit 1).
type FatalError struct {
	Code int
	err  error
}

// NewFatalError wraps err as fatal with exit code 2.
func NewFatalError(err error) *FatalError {
	return &FatalError{Code: 2, err: err}
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.err)
}

func (e *FatalError) Unwrap() error {
	return e.err
}
