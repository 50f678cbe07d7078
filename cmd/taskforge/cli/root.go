package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/taskforge/cli/cmd/taskforge/cli/settings"
	"github.com/taskforge/cli/cmd/taskforge/cli/telemetry"
	"github.com/taskforge/cli/cmd/taskforge/cli/versioncheck"
)

const gettingStarted = `

Getting Started:
  To get started with Taskforge, run 'taskforge enable' inside a git
  repository. From then on, prompts starting with /task get a task
  directory and branch provisioned automatically.

`

const accessibilityHelp = `
Environment Variables:
  ACCESSIBLE    Set to any value (e.g., ACCESSIBLE=1) to enable accessibility
                mode. This uses simpler text prompts instead of interactive
                TUI elements, which works better with screen readers.
`

// Version information (can be set at build time)
var (
	Version = "dev"
	Commit  = "unknown"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskforge",
		Short: "Taskforge CLI",
		Long:  "Task session provisioning for coding agents" + gettingStarted + accessibilityHelp,
		// Let main.go handle error printing to avoid duplication
		SilenceErrors: true,
		// Hide completion command from help but keep it functional
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			versioncheck.CheckAndNotify(cmd, Version)

			// Load telemetry preference from settings (ignore errors - nil defaults to disabled)
			var telemetryEnabled *bool
			hooksEnabled := false
			s, err := settings.Load()
			if err == nil {
				telemetryEnabled = s.Telemetry
				hooksEnabled = s.Enabled
			}

			telemetryClient := telemetry.NewClient(Version, telemetryEnabled)
			defer telemetryClient.Close()
			telemetryClient.TrackCommand(cmd, "", hooksEnabled)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newEnableCmd())
	cmd.AddCommand(newDisableCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newHooksCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("Taskforge %s (%s)\n", Version, Commit)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
