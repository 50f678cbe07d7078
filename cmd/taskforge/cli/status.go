package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taskforge/cli/cmd/taskforge/cli/claudesettings"
	"github.com/taskforge/cli/cmd/taskforge/cli/gitinfo"
	"github.com/taskforge/cli/cmd/taskforge/cli/paths"
	"github.com/taskforge/cli/cmd/taskforge/cli/provision"
	"github.com/taskforge/cli/cmd/taskforge/cli/settings"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show Taskforge status",
		Long:  "Show whether Taskforge is enabled, its hook installation state, and the next task identifiers.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.OutOrStdout())
		},
	}
}

func runStatus(w io.Writer) error {
	repoRoot, repoErr := paths.RepoRoot()
	if repoErr != nil {
		fmt.Fprintln(w, "✕ not a git repository")
		return nil //nolint:nilerr // Not being in a git repo is a valid status, not an error
	}

	settingsPath, err := paths.AbsPath(settings.SettingsFile)
	if err != nil {
		settingsPath = settings.SettingsFile
	}
	localSettingsPath, err := paths.AbsPath(settings.SettingsLocalFile)
	if err != nil {
		localSettingsPath = settings.SettingsLocalFile
	}

	_, projectErr := os.Stat(settingsPath)
	if projectErr != nil && !errors.Is(projectErr, fs.ErrNotExist) {
		return fmt.Errorf("cannot access project settings file: %w", projectErr)
	}
	_, localErr := os.Stat(localSettingsPath)
	if localErr != nil && !errors.Is(localErr, fs.ErrNotExist) {
		return fmt.Errorf("cannot access local settings file: %w", localErr)
	}

	if projectErr != nil && localErr != nil && !claudesettings.AreHooksInstalled(repoRoot) {
		fmt.Fprintln(w, "○ not set up (run `taskforge enable` to get started)")
		return nil
	}

	s, err := settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if s.Enabled {
		fmt.Fprintln(w, "Enabled")
	} else {
		fmt.Fprintln(w, "Disabled")
	}

	if claudesettings.AreHooksInstalled(repoRoot) {
		fmt.Fprintln(w, "✓ Claude Code hooks installed")
	} else {
		fmt.Fprintln(w, "✕ Claude Code hooks not installed (run `taskforge enable`)")
	}

	fmt.Fprintf(w, "  Task base directory: %s\n", s.AdHocBaseDir())
	fmt.Fprintf(w, "  Branch prefix:       %s\n", s.TaskBranchPrefix())

	if nextID, idErr := provision.NextID(filepath.Join(repoRoot, s.AdHocBaseDir()), paths.TaskDirPrefix); idErr == nil {
		fmt.Fprintf(w, "  Next ad-hoc task:    %s\n", paths.TaskDirName(nextID))
	}

	if branch, branchErr := gitinfo.CurrentBranch(repoRoot); branchErr == nil {
		fmt.Fprintf(w, "  Current branch:      %s\n", branch)
	}
	if defaultBranch := gitinfo.DefaultBranch(repoRoot); defaultBranch != "" {
		fmt.Fprintf(w, "  Default branch:      %s\n", defaultBranch)
	}
	if author, authorErr := gitinfo.GetAuthor(repoRoot); authorErr == nil {
		fmt.Fprintf(w, "  Git author:          %s <%s>\n", author.Name, author.Email)
	}

	return nil
}
