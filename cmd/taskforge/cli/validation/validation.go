// Package validation provides input validation functions for the Taskforge CLI.
// This package has no dependencies to avoid import cycles.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// pathSafeRegex matches alphanumeric characters, underscores, and hyphens only.
// Used to validate identifiers that will be used in file paths.
var pathSafeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// branchComponentRegex matches characters allowed in a single branch name
// component. Slashes are handled by the caller, which joins components.
var branchComponentRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateSessionID validates that a session ID doesn't contain path separators.
// This prevents path traversal attacks when session IDs are used in file paths.
func ValidateSessionID(id string) error {
	if id == "" {
		return errors.New("session ID cannot be empty")
	}
	if strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("invalid session ID %q: contains path separators", id)
	}
	return nil
}

// ValidateTaskDirName validates that a task directory name contains only
// characters safe for use as a single path element.
func ValidateTaskDirName(name string) error {
	if name == "" {
		return errors.New("task directory name cannot be empty")
	}
	if !pathSafeRegex.MatchString(name) {
		return fmt.Errorf("invalid task directory name %q: must be alphanumeric with underscores/hyphens only", name)
	}
	return nil
}

// ValidateBranchName validates a branch name of the form "prefix/component"
// or "prefix/component/component". Each slash-separated component must be a
// legal git ref component; leading/trailing slashes and ".." are rejected.
func ValidateBranchName(name string) error {
	if name == "" {
		return errors.New("branch name cannot be empty")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("invalid branch name %q: leading or trailing slash", name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" {
			return fmt.Errorf("invalid branch name %q: empty component", name)
		}
		if part == "." || part == ".." {
			return fmt.Errorf("invalid branch name %q: dot component", name)
		}
		if !branchComponentRegex.MatchString(part) {
			return fmt.Errorf("invalid branch name %q: component %q contains illegal characters", name, part)
		}
	}
	return nil
}
