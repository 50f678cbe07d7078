// Package gitinfo reads repository information through go-git: the current
// branch, the configured author, and the default branch. These are ancillary
// lookups used for context-message assembly and are deliberately separate
// from the gitexec capability surface that performs mutations.
package gitinfo

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Author represents the git user configuration.
type Author struct {
	Name  string
	Email string
}

// OpenRepository opens the git repository containing cwd.
func OpenRepository(cwd string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(cwd, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// CurrentBranch returns the name of the current branch.
// Returns an error if in detached HEAD state or if not in a git repository.
func CurrentBranch(cwd string) (string, error) {
	repo, err := OpenRepository(cwd)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", errors.New("not on a branch (detached HEAD)")
	}

	return head.Name().Short(), nil
}

// GetAuthor retrieves the git user.name and user.email from the repository
// config. If go-git can't find the config, it falls back to the git command.
// Returns fallback defaults if no user is configured anywhere.
func GetAuthor(cwd string) (*Author, error) {
	repo, err := OpenRepository(cwd)
	if err != nil {
		return nil, err
	}

	name := "Unknown"
	email := "unknown@local"
	cfg, err := repo.Config()
	if err == nil && cfg != nil {
		if cfg.User.Name != "" {
			name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			email = cfg.User.Email
		}
	}

	// go-git can miss config in hook contexts (different HOME paths,
	// non-standard config locations); fall back to the git command.
	if name == "Unknown" {
		if gitName := getGitConfigValue(cwd, "user.name"); gitName != "" {
			name = gitName
		}
	}
	if email == "unknown@local" {
		if gitEmail := getGitConfigValue(cwd, "user.email"); gitEmail != "" {
			email = gitEmail
		}
	}

	return &Author{Name: name, Email: email}, nil
}

// getGitConfigValue retrieves a git config value using the git command.
// Returns empty string if the value is not set or on error.
func getGitConfigValue(cwd, key string) string {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "config", "--get", key)
	cmd.Dir = cwd
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// DefaultBranch tries to determine the default branch from the origin remote,
// falling back to common names (main, master) when origin/HEAD is not set.
// Returns empty string if unable to determine.
func DefaultBranch(cwd string) string {
	repo, err := OpenRepository(cwd)
	if err != nil {
		return ""
	}

	// origin/HEAD is symbolic; resolve manually to read its target branch.
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "HEAD"), false)
	if err == nil && ref != nil && ref.Type() == plumbing.SymbolicReference {
		target := ref.Target().String()
		if strings.HasPrefix(target, "refs/remotes/origin/") {
			return strings.TrimPrefix(target, "refs/remotes/origin/")
		}
	}

	if _, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "main"), true); err == nil {
		return "main"
	}
	if _, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "master"), true); err == nil {
		return "master"
	}

	return ""
}
