package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/taskforge/cli/cmd/taskforge/cli/claudesettings"
	"github.com/taskforge/cli/cmd/taskforge/cli/paths"
	"github.com/taskforge/cli/cmd/taskforge/cli/settings"
)

func newEnableCmd() *cobra.Command {
	var localDev bool
	var useLocalSettings bool
	var useProjectSettings bool
	var forceHooks bool

	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Enable Taskforge",
		Long:  "Enable Taskforge by installing the Claude Code prompt hook and writing project settings.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if useLocalSettings && useProjectSettings {
				return fmt.Errorf("--local and --project are mutually exclusive")
			}
			return runEnable(cmd.OutOrStdout(), localDev, useLocalSettings, useProjectSettings, forceHooks)
		},
	}

	cmd.Flags().BoolVar(&localDev, "local-dev", false, "Use go run instead of the taskforge binary for hooks")
	cmd.Flags().MarkHidden("local-dev") //nolint:errcheck,gosec // flag is defined above
	cmd.Flags().BoolVar(&useLocalSettings, "local", false, "Write settings to settings.local.json instead of settings.json")
	cmd.Flags().BoolVar(&useProjectSettings, "project", false, "Write settings to settings.json even if it already exists")
	cmd.Flags().BoolVarP(&forceHooks, "force", "f", false, "Force reinstall hooks (removes existing Taskforge hooks first)")

	return cmd
}

func newDisableCmd() *cobra.Command {
	var useProjectSettings bool

	cmd := &cobra.Command{
		Use:   "disable",
		Short: "Disable Taskforge",
		Long:  "Disable Taskforge temporarily. The prompt hook will exit silently until re-enabled.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDisable(cmd.OutOrStdout(), useProjectSettings)
		},
	}

	cmd.Flags().BoolVar(&useProjectSettings, "project", false, "Update settings.json instead of settings.local.json")

	return cmd
}

func runEnable(w io.Writer, localDev, useLocalSettings, useProjectSettings, forceHooks bool) error {
	repoRoot, err := paths.RepoRoot()
	if err != nil {
		return fmt.Errorf("not inside a git repository: %w", err)
	}

	// Snapshot Claude settings before installing so we can show what changed.
	before := readFileOrEmpty(claudesettings.SettingsPath(repoRoot))

	hooksInstalled, err := claudesettings.InstallHooks(repoRoot, localDev, forceHooks)
	if err != nil {
		return fmt.Errorf("failed to setup Claude Code hooks: %w", err)
	}
	if hooksInstalled > 0 {
		fmt.Fprintln(w, "✓ Claude Code hooks installed")
	} else {
		fmt.Fprintln(w, "✓ Claude Code hooks verified")
	}

	if after := readFileOrEmpty(claudesettings.SettingsPath(repoRoot)); after != before {
		printSettingsDiff(w, before, after)
	}

	// Load existing settings to preserve other options (like base_dir)
	s, err := settings.Load()
	if err != nil {
		s = &settings.Settings{}
	}
	s.Enabled = true
	s.LocalDev = localDev

	if s.Telemetry == nil && isInteractive() {
		optIn, promptErr := promptTelemetryOptIn()
		if promptErr == nil {
			s.Telemetry = &optIn
		}
	}

	// Project settings that already exist are left alone unless --project is
	// given; updates go to the uncommitted local file instead.
	settingsPath, pathErr := paths.AbsPath(settings.SettingsFile)
	if pathErr != nil {
		settingsPath = settings.SettingsFile
	}
	_, statErr := os.Stat(settingsPath)
	shouldUseLocal := useLocalSettings || (statErr == nil && !useProjectSettings)

	if shouldUseLocal && !useLocalSettings && statErr == nil {
		fmt.Fprintln(w, "Info: Project settings exist. Saving to settings.local.json instead.")
		fmt.Fprintln(w, "  Use --project to update the project settings file.")
	}

	if shouldUseLocal {
		if err := settings.SaveLocal(s); err != nil {
			return fmt.Errorf("failed to save local settings: %w", err)
		}
		fmt.Fprintf(w, "✓ Local settings saved (%s)\n", settings.SettingsLocalFile)
	} else {
		if err := settings.Save(s); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Fprintf(w, "✓ Project settings saved (%s)\n", settings.SettingsFile)
	}

	fmt.Fprintln(w, "\n✓ Taskforge enabled. Prompts starting with /task now provision task sessions.")
	return nil
}

func runDisable(w io.Writer, useProjectSettings bool) error {
	s, err := settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	s.Enabled = false

	// If --project flag is specified, always write to project settings
	if useProjectSettings {
		if err := settings.Save(s); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
	} else {
		// Check if local settings file exists - if so, write there
		localSettingsAbs, pathErr := paths.AbsPath(settings.SettingsLocalFile)
		if pathErr != nil {
			localSettingsAbs = settings.SettingsLocalFile
		}
		if _, statErr := os.Stat(localSettingsAbs); statErr == nil {
			if err := settings.SaveLocal(s); err != nil {
				return fmt.Errorf("failed to save local settings: %w", err)
			}
		} else {
			if err := settings.Save(s); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
		}
	}

	fmt.Fprintln(w, "Taskforge is now disabled.")
	return nil
}

// promptTelemetryOptIn asks once whether anonymous usage data may be collected.
func promptTelemetryOptIn() (bool, error) {
	var optIn bool
	form := NewAccessibleForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Help improve Taskforge by sharing anonymous usage data?").
				Description("Only command names and flag names are collected, never prompt content.").
				Value(&optIn),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("telemetry prompt cancelled: %w", err)
	}
	return optIn, nil
}

// printSettingsDiff shows a line-based diff of the Claude settings change.
func printSettingsDiff(w io.Writer, before, after string) {
	dmp := diffmatchpatch.New()
	text1, text2, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(text1, text2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	fmt.Fprintf(w, "  Changes to .claude/%s:\n", claudesettings.SettingsFileName)
	for _, d := range diffs {
		prefix := ""
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "  + "
		case diffmatchpatch.DiffDelete:
			prefix = "  - "
		case diffmatchpatch.DiffEqual:
			continue
		}
		for line := range strings.SplitSeq(strings.TrimRight(d.Text, "\n"), "\n") {
			fmt.Fprintf(w, "%s%s\n", prefix, line)
		}
	}
}

func readFileOrEmpty(path string) string {
	data, err := os.ReadFile(path) //nolint:gosec // path is repo root + fixed suffix
	if err != nil {
		return ""
	}
	return string(data)
}
