// Package paths centralizes the filesystem layout produced and consumed by
// Taskforge: task base directories, task directory naming, report filenames,
// and repository-root resolution.
package paths

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"fmt"
)

// Directory constants
const (
	TaskforgeDir     = ".taskforge"
	TaskforgeLogsDir = ".taskforge/logs"
)

// Task base directories per mode (relative to the repository root).
const (
	// PlanBaseDir holds ad-hoc task directories (task-<n>).
	PlanBaseDir = "docs/plan"
	// IssuesBaseDir holds issue-addressed task directories (gh-<n>).
	IssuesBaseDir = "docs/issues"
	// StagesBaseDir holds planning-stage directories (NNN-name), each of
	// which holds per-stage sub-task directories (task-<n>).
	StagesBaseDir = "docs/stages"
)

// Task directory naming
const (
	// TaskDirPrefix is the prefix for sequentially allocated task directories.
	TaskDirPrefix = "task-"
	// IssueDirPrefix is the prefix for issue-addressed task directories.
	IssueDirPrefix = "gh-"
	// BranchPrefix is the namespace for task branches.
	BranchPrefix = "task/"
)

// Fixed file names inside task directories. Downstream agents write the
// report files; the provisioner writes ISSUE.md for issue-addressed tasks.
const (
	IssueFileName               = "ISSUE.md"
	StageManifestFileName       = "STAGE.md"
	InvestigationReportFileName = "INVESTIGATION_REPORT.md"
	FlowReportFileName          = "FLOW_REPORT.md"
	PlanFileName                = "PLAN.md"
)

// TriggerPrefix is the prompt prefix that activates task provisioning.
const TriggerPrefix = "/task"

// repoRootCache caches the repository root to avoid repeated git commands.
// The cache is keyed by the current working directory to handle directory changes.
var (
	repoRootMu       sync.RWMutex
	repoRootCache    string
	repoRootCacheDir string
)

// RepoRoot returns the git repository root directory.
// Uses 'git rev-parse --show-toplevel' which works from any subdirectory.
// The result is cached per working directory.
// Returns an error if not inside a git repository.
func RepoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}

	repoRootMu.RLock()
	if repoRootCache != "" && repoRootCacheDir == cwd {
		cached := repoRootCache
		repoRootMu.RUnlock()
		return cached, nil
	}
	repoRootMu.RUnlock()

	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get git repository root: %w", err)
	}

	root := strings.TrimSpace(string(output))

	repoRootMu.Lock()
	repoRootCache = root
	repoRootCacheDir = cwd
	repoRootMu.Unlock()

	return root, nil
}

// ClearRepoRootCache clears the cached repository root.
// This is primarily useful for testing when changing directories.
func ClearRepoRootCache() {
	repoRootMu.Lock()
	repoRootCache = ""
	repoRootCacheDir = ""
	repoRootMu.Unlock()
}

// RepoRootOr returns the git repository root directory, or the fallback
// if not inside a git repository.
func RepoRootOr(fallback string) string {
	root, err := RepoRoot()
	if err != nil {
		return fallback
	}
	return root
}

// AbsPath returns the absolute path for a relative path within the repository.
// If the path is already absolute, it is returned as-is.
func AbsPath(relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return relPath, nil
	}

	root, err := RepoRoot()
	if err != nil {
		return "", err
	}

	return filepath.Join(root, relPath), nil
}

// TaskDirName formats a sequential task directory name, e.g. "task-7".
func TaskDirName(id int) string {
	return fmt.Sprintf("%s%d", TaskDirPrefix, id)
}

// IssueDirName formats an issue-addressed task directory name, e.g. "gh-42".
func IssueDirName(number string) string {
	return IssueDirPrefix + number
}

// StageDir returns the stage directory path for a planning-stage identifier,
// relative to the repository root, e.g. "docs/stages/007-billing".
func StageDir(stage string) string {
	return filepath.Join(StagesBaseDir, stage)
}

// IsInfrastructurePath returns true if the path is part of CLI infrastructure
// (i.e., inside the .taskforge directory).
func IsInfrastructurePath(path string) bool {
	return strings.HasPrefix(path, TaskforgeDir+"/") || path == TaskforgeDir
}
