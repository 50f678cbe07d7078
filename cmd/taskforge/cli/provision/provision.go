// Package provision implements the task-session provisioning core: identity
// allocation, workspace pre-flight, directory creation, branch lifecycle, and
// context-message assembly.
//
// One invocation per triggering prompt; no state survives between
// invocations. All coordination state lives in the filesystem (directory
// names) and the git repository (branch refs).
package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/taskforge/cli/cmd/taskforge/cli/gitexec"
	"github.com/taskforge/cli/cmd/taskforge/cli/gitinfo"
	"github.com/taskforge/cli/cmd/taskforge/cli/issues"
	"github.com/taskforge/cli/cmd/taskforge/cli/logging"
	"github.com/taskforge/cli/cmd/taskforge/cli/paths"
	"github.com/taskforge/cli/cmd/taskforge/cli/settings"
	"github.com/taskforge/cli/cmd/taskforge/cli/taskmode"
	"github.com/taskforge/cli/cmd/taskforge/cli/validation"
)

// Request is one provisioning trigger: the raw /task argument and the
// working directory it was issued from. Immutable, created once per
// invocation.
type Request struct {
	Argument string
	Cwd      string
}

// Identity is the derived task identity for one request.
type Identity struct {
	Mode       taskmode.Mode
	Identifier string
	// BaseDir is the mode-specific base directory, relative to the repo root.
	BaseDir string
	// TaskDirName is the new task subdirectory name, e.g. "gh-42" or "task-3".
	TaskDirName string
	// BranchName is the task branch, e.g. "task/task-3".
	BranchName string
}

// Outcome is the terminal result of a provisioning invocation. Produced
// once; never mutated afterward.
type Outcome struct {
	Identity       Identity
	TaskDirPath    string
	BranchName     string
	BranchCreated  bool
	BranchWarning  string
	ContextMessage string
}

// MissingPrerequisiteError indicates a planning stage directory or its
// manifest is absent. Fatal: the stage must be set up before tasks can be
// provisioned into it.
type MissingPrerequisiteError struct {
	Stage  string
	Reason string
}

func (e *MissingPrerequisiteError) Error() string {
	return fmt.Sprintf("planning stage %q is not usable: %s", e.Stage, e.Reason)
}

// Provisioner composes the classifier, allocator, workspace guard, directory
// provisioner, and branch lifecycle per the classified mode.
type Provisioner struct {
	Runner   gitexec.Runner
	Fetcher  issues.Fetcher
	Settings *settings.Settings
	// RepoRoot is the repository root all relative paths resolve against.
	RepoRoot string
	// RedactFn, when set, is applied to fetched issue text before it is
	// written into the repository.
	RedactFn func(string) string
}

// Provision runs the full state machine:
//
//	Start -> Classified -> PreflightChecked -> DirectoryProvisioned ->
//	BranchResolved -> Reported
//
// Fatal failures (dirty tree, missing repository, missing stage manifest,
// failed issue fetch, directory creation failure) abort before any further
// mutation. Branch failure is deliberately non-fatal: the directory is cheap
// and desired regardless of branch outcome, so it is downgraded to a warning
// in the context message.
func (p *Provisioner) Provision(ctx context.Context, req Request) (*Outcome, error) {
	mode, identifier := taskmode.Classify(req.Argument)
	logCtx := logging.WithMode(logging.WithComponent(ctx, "provision"), mode.String())
	logging.Info(logCtx, "classified task request",
		slog.String("identifier", identifier),
	)

	// Fail-closed pre-flight gate: no mutation on a dirty or absent repo.
	if err := gitexec.CheckClean(ctx, p.Runner, req.Cwd); err != nil {
		return nil, err
	}

	// GithubIssue mode fetches before any directory exists, so a fetch
	// failure leaves no partial state behind.
	var issueText string
	if mode == taskmode.GithubIssue {
		number := taskmode.IssueNumber(identifier)
		text, err := p.Fetcher.FetchIssue(ctx, number)
		if err != nil {
			return nil, err
		}
		if p.RedactFn != nil {
			text = p.RedactFn(text)
		}
		issueText = text
	}

	identity, err := p.resolveIdentity(mode, identifier)
	if err != nil {
		return nil, err
	}

	taskDirPath := filepath.Join(p.RepoRoot, identity.BaseDir, identity.TaskDirName)
	if err := EnsureDir(taskDirPath); err != nil {
		return nil, err
	}
	logging.Info(logCtx, "provisioned task directory",
		slog.String("task_dir", taskDirPath),
	)

	if issueText != "" {
		issueFile := filepath.Join(taskDirPath, paths.IssueFileName)
		if err := os.WriteFile(issueFile, []byte(issueText), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", paths.IssueFileName, err)
		}
	}

	// Record the branch the task branch is created from, for the context
	// message. Best-effort: empty on detached HEAD.
	sourceBranch, _ := gitinfo.CurrentBranch(req.Cwd) //nolint:errcheck // best-effort lookup

	outcome := &Outcome{
		Identity:    identity,
		TaskDirPath: taskDirPath,
		BranchName:  identity.BranchName,
	}

	result, err := EnsureBranchActive(ctx, p.Runner, identity.BranchName, req.Cwd)
	if err != nil {
		// Non-fatal: the directory exists and is usable. Folded into the
		// otherwise-successful context message.
		outcome.BranchWarning = err.Error()
		logging.Warn(logCtx, "branch setup failed",
			slog.String("branch", identity.BranchName),
			slog.String("error", err.Error()),
		)
	} else {
		outcome.BranchCreated = result == BranchCreated
	}

	outcome.ContextMessage = buildContextMessage(outcome, mode, req.Argument, sourceBranch)
	logging.Info(logCtx, "task session provisioned",
		slog.String("branch", identity.BranchName),
		slog.Bool("branch_created", outcome.BranchCreated),
	)
	return outcome, nil
}

// resolveIdentity derives the mode-specific base directory, task directory
// name, and branch name, allocating a sequential identifier where needed.
func (p *Provisioner) resolveIdentity(mode taskmode.Mode, identifier string) (Identity, error) {
	branchPrefix := p.Settings.TaskBranchPrefix()

	identity := Identity{Mode: mode, Identifier: identifier}

	switch mode {
	case taskmode.GithubIssue:
		identity.BaseDir = paths.IssuesBaseDir
		identity.TaskDirName = paths.IssueDirName(taskmode.IssueNumber(identifier))
		identity.BranchName = branchPrefix + identity.TaskDirName

	case taskmode.PlanningStage:
		stageDir := filepath.Join(p.RepoRoot, paths.StageDir(identifier))
		info, err := os.Stat(stageDir)
		if err != nil || !info.IsDir() {
			return Identity{}, &MissingPrerequisiteError{
				Stage:  identifier,
				Reason: fmt.Sprintf("stage directory %s does not exist", paths.StageDir(identifier)),
			}
		}
		manifest := filepath.Join(stageDir, paths.StageManifestFileName)
		if _, err := os.Stat(manifest); err != nil {
			return Identity{}, &MissingPrerequisiteError{
				Stage:  identifier,
				Reason: fmt.Sprintf("stage manifest %s is missing", paths.StageManifestFileName),
			}
		}

		id, err := NextID(stageDir, paths.TaskDirPrefix)
		if err != nil {
			return Identity{}, err
		}
		identity.BaseDir = paths.StageDir(identifier)
		identity.TaskDirName = paths.TaskDirName(id)
		identity.BranchName = branchPrefix + identifier + "/" + identity.TaskDirName

	default: // taskmode.AdHoc
		baseDir := p.Settings.AdHocBaseDir()
		if paths.IsInfrastructurePath(baseDir) {
			return Identity{}, fmt.Errorf("task base directory %q must not be inside %s", baseDir, paths.TaskforgeDir)
		}
		id, err := NextID(filepath.Join(p.RepoRoot, baseDir), paths.TaskDirPrefix)
		if err != nil {
			return Identity{}, err
		}
		identity.BaseDir = baseDir
		identity.TaskDirName = paths.TaskDirName(id)
		identity.BranchName = branchPrefix + identity.TaskDirName
	}

	if err := validation.ValidateTaskDirName(identity.TaskDirName); err != nil {
		return Identity{}, err
	}
	if err := validation.ValidateBranchName(identity.BranchName); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

// buildContextMessage assembles the instruction message downstream agents
// consume to know where to write their reports.
func buildContextMessage(outcome *Outcome, mode taskmode.Mode, argument, sourceBranch string) string {
	relDir := filepath.Join(outcome.Identity.BaseDir, outcome.Identity.TaskDirName)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Directory %s has been automatically created for this task session.", relDir)
	fmt.Fprintf(&sb, " The subagents must create the %s, %s and %s files inside %s/.",
		paths.InvestigationReportFileName, paths.FlowReportFileName, paths.PlanFileName, relDir)

	switch {
	case outcome.BranchWarning != "":
		fmt.Fprintf(&sb, " Warning: branch setup failed (%s); continuing on the current branch.", outcome.BranchWarning)
	case outcome.BranchCreated && sourceBranch != "":
		fmt.Fprintf(&sb, " Branch %s was created from %s and is now active.", outcome.BranchName, sourceBranch)
	case outcome.BranchCreated:
		fmt.Fprintf(&sb, " Branch %s was created and is now active.", outcome.BranchName)
	default:
		fmt.Fprintf(&sb, " Existing branch %s is now active.", outcome.BranchName)
	}

	if mode == taskmode.GithubIssue {
		fmt.Fprintf(&sb, " The issue content has been saved to %s.", filepath.Join(relDir, paths.IssueFileName))
	}

	if mode == taskmode.AdHoc {
		problem := strings.TrimSpace(argument)
		if problem != "" {
			fmt.Fprintf(&sb, " Problem to solve: %s", problem)
		}
	}

	return sb.String()
}
