package cli

import (
	"github.com/spf13/cobra"

	"github.com/taskforge/cli/cmd/taskforge/cli/claudesettings"
)

func newHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "hooks",
		Short:  "Hook handlers",
		Long:   "Commands called by hooks. These are internal and not for direct user use.",
		Hidden: true, // Internal command, not for direct user use
	}

	cmd.AddCommand(newClaudeCodeHooksCmd())

	return cmd
}

func newClaudeCodeHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claude-code",
		Short: "Claude Code hook handlers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   claudesettings.HookNameUserPromptSubmit,
		Short: "Handle the UserPromptSubmit hook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleUserPromptSubmit(cmd)
		},
	})

	return cmd
}
