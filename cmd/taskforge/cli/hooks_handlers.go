// hooks_handlers.go contains the Claude Code hook handler implementations.
// Handlers are invoked once per prompt, read their input from stdin, and
// communicate back through stdout (context for the session) and the exit
// code (0 = proceed, 2 = block the prompt).
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskforge/cli/cmd/taskforge/cli/claudesettings"
	"github.com/taskforge/cli/cmd/taskforge/cli/gitexec"
	"github.com/taskforge/cli/cmd/taskforge/cli/issues"
	"github.com/taskforge/cli/cmd/taskforge/cli/logging"
	"github.com/taskforge/cli/cmd/taskforge/cli/paths"
	"github.com/taskforge/cli/cmd/taskforge/cli/provision"
	"github.com/taskforge/cli/cmd/taskforge/cli/settings"
	"github.com/taskforge/cli/cmd/taskforge/cli/validation"
	"github.com/taskforge/cli/redact"
)

// isTaskTrigger reports whether a prompt invokes task provisioning. The
// trigger is the exact /task token, alone or followed by whitespace;
// prompts like "/taskforce" do not match.
func isTaskTrigger(prompt string) bool {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == paths.TriggerPrefix {
		return true
	}
	return strings.HasPrefix(trimmed, paths.TriggerPrefix+" ") ||
		strings.HasPrefix(trimmed, paths.TriggerPrefix+"\t")
}

// taskArgument strips the trigger token and returns the remaining argument.
func taskArgument(prompt string) string {
	trimmed := strings.TrimSpace(prompt)
	return strings.TrimSpace(strings.TrimPrefix(trimmed, paths.TriggerPrefix))
}

func handleUserPromptSubmit(cmd *cobra.Command) error {
	input, err := claudesettings.ParsePromptInput(cmd.InOrStdin())
	if err != nil {
		// Malformed hook input must never block the user's prompt.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return nil
	}

	if !isTaskTrigger(input.Prompt) {
		return nil
	}

	s, err := settings.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load settings: %v\n", err)
		s = &settings.Settings{Enabled: true}
	}
	if !s.Enabled {
		return nil
	}
	logging.SetLogLevelGetter(func() string { return s.LogLevel })

	if input.SessionID != "" {
		if err := validation.ValidateSessionID(input.SessionID); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else if err := logging.Init(input.SessionID); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
		}
		defer logging.Close()
	}

	cwd := input.Cwd
	if cwd == "" {
		cwd, err = os.Getwd()
		if err != nil {
			return failProvisioning(fmt.Errorf("failed to get working directory: %w", err))
		}
	}

	repoRoot, err := paths.RepoRoot()
	if err != nil {
		return failProvisioning(gitexec.ErrNotARepository)
	}

	ctx := logging.WithSession(cmd.Context(), input.SessionID)
	p := &provision.Provisioner{
		Runner:   &gitexec.ExecRunner{},
		Fetcher:  &issues.GhCLIFetcher{Dir: repoRoot},
		Settings: s,
		RepoRoot: repoRoot,
		RedactFn: redact.String,
	}

	outcome, err := p.Provision(ctx, provision.Request{
		Argument: taskArgument(input.Prompt),
		Cwd:      cwd,
	})
	if err != nil {
		logging.Error(ctx, "task provisioning failed", slog.String("error", err.Error()))
		return failProvisioning(err)
	}

	if outcome.BranchWarning != "" {
		fmt.Fprintf(os.Stderr, "Warning: branch setup failed: %s\n", outcome.BranchWarning)
	}

	// Stdout becomes context for the session.
	fmt.Fprintln(cmd.OutOrStdout(), outcome.ContextMessage)
	return nil
}

// failProvisioning prints a remediation message to stderr and returns a
// fatal error so the prompt is blocked with exit code 2. The wrapped
// SilentError keeps main.go from printing the error a second time.
func failProvisioning(err error) error {
	fmt.Fprintln(os.Stderr, remediationMessage(err))
	return NewFatalError(NewSilentError(err))
}

// remediationMessage maps a provisioning failure to an actionable message.
func remediationMessage(err error) string {
	var dirty *gitexec.DirtyWorkingTreeError
	if errors.As(err, &dirty) {
		return fmt.Sprintf("Error: the working tree has uncommitted changes:\n%s\nCommit or stash them, then retry /task.", dirty.Status)
	}

	if errors.Is(err, gitexec.ErrNotARepository) {
		return "Error: not inside a git repository.\nRun your session from within a git repository to use /task."
	}

	var fetchErr *issues.FetchError
	if errors.As(err, &fetchErr) {
		return fmt.Sprintf("Error: %v\nCheck that the gh CLI is installed and authenticated (gh auth status).", fetchErr)
	}

	var missing *provision.MissingPrerequisiteError
	if errors.As(err, &missing) {
		return fmt.Sprintf("Error: %v\nCreate %s with a %s manifest first, then retry /task.",
			missing, paths.StageDir(missing.Stage), paths.StageManifestFileName)
	}

	return fmt.Sprintf("Error: task provisioning failed: %v", err)
}
