package provision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/cli/cmd/taskforge/cli/gitexec"
	"github.com/taskforge/cli/cmd/taskforge/cli/issues"
	"github.com/taskforge/cli/cmd/taskforge/cli/paths"
	"github.com/taskforge/cli/cmd/taskforge/cli/settings"
	"github.com/taskforge/cli/cmd/taskforge/cli/taskmode"
)

func newTestProvisioner(t *testing.T, runner gitexec.Runner) (*Provisioner, string) {
	t.Helper()
	root := t.TempDir()
	p := &Provisioner{
		Runner: runner,
		Fetcher: issues.FetcherFunc(func(_ context.Context, number string) (string, error) {
			return "# Issue #" + number + ": stub\n\nstub body\n", nil
		}),
		Settings: &settings.Settings{Enabled: true},
		RepoRoot: root,
	}
	return p, root
}

func TestProvisionAdHoc(t *testing.T) {
	fake := &gitexec.FakeRunner{Active: "main"}
	p, root := newTestProvisioner(t, fake)

	outcome, err := p.Provision(context.Background(), Request{Argument: "fix the thing", Cwd: root})
	require.NoError(t, err)

	assert.Equal(t, taskmode.AdHoc, outcome.Identity.Mode)
	assert.Equal(t, "task-1", outcome.Identity.TaskDirName)
	assert.Equal(t, "task/task-1", outcome.BranchName)
	assert.True(t, outcome.BranchCreated)
	assert.DirExists(t, filepath.Join(root, "docs", "plan", "task-1"))

	assert.Contains(t, outcome.ContextMessage, "docs/plan/task-1")
	assert.Contains(t, outcome.ContextMessage, "INVESTIGATION_REPORT.md")
	assert.Contains(t, outcome.ContextMessage, "FLOW_REPORT.md")
	assert.Contains(t, outcome.ContextMessage, "PLAN.md")
	assert.Contains(t, outcome.ContextMessage, "Problem to solve: fix the thing")
}

func TestProvisionAdHocAllocatesSequentially(t *testing.T) {
	fake := &gitexec.FakeRunner{}
	p, root := newTestProvisioner(t, fake)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "plan", "task-5"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "plan", "task-9"), 0o750))

	outcome, err := p.Provision(context.Background(), Request{Argument: "next one", Cwd: root})
	require.NoError(t, err)
	assert.Equal(t, "task-10", outcome.Identity.TaskDirName)
}

func TestProvisionGithubIssueWritesIssueFile(t *testing.T) {
	fake := &gitexec.FakeRunner{}
	p, root := newTestProvisioner(t, fake)

	outcome, err := p.Provision(context.Background(), Request{Argument: "GH-42", Cwd: root})
	require.NoError(t, err)

	assert.Equal(t, taskmode.GithubIssue, outcome.Identity.Mode)
	assert.Equal(t, "gh-42", outcome.Identity.TaskDirName)
	assert.Equal(t, "task/gh-42", outcome.BranchName)

	issueFile := filepath.Join(root, "docs", "issues", "gh-42", paths.IssueFileName)
	data, err := os.ReadFile(issueFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Issue #42")
	assert.Contains(t, outcome.ContextMessage, "ISSUE.md")
}

func TestProvisionGithubIssueAppliesRedaction(t *testing.T) {
	fake := &gitexec.FakeRunner{}
	p, root := newTestProvisioner(t, fake)
	p.Fetcher = issues.FetcherFunc(func(_ context.Context, _ string) (string, error) {
		return "token: s3cr3t-value", nil
	})
	p.RedactFn = func(s string) string {
		return "REDACTED"
	}

	_, err := p.Provision(context.Background(), Request{Argument: "gh-7", Cwd: root})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "docs", "issues", "gh-7", paths.IssueFileName))
	require.NoError(t, err)
	assert.Equal(t, "REDACTED", string(data))
}

func TestProvisionGithubIssueFetchFailureCreatesNothing(t *testing.T) {
	fake := &gitexec.FakeRunner{}
	p, root := newTestProvisioner(t, fake)
	p.Fetcher = issues.FetcherFunc(func(_ context.Context, number string) (string, error) {
		return "", &issues.FetchError{Number: number, Err: errors.New("gh not installed")}
	})

	_, err := p.Provision(context.Background(), Request{Argument: "gh-42", Cwd: root})
	require.Error(t, err)

	var fetchErr *issues.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.NoDirExists(t, filepath.Join(root, "docs", "issues", "gh-42"))
}

func TestProvisionPlanningStage(t *testing.T) {
	fake := &gitexec.FakeRunner{}
	p, root := newTestProvisioner(t, fake)
	stageDir := filepath.Join(root, "docs", "stages", "007-billing")
	require.NoError(t, os.MkdirAll(stageDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(stageDir, paths.StageManifestFileName), []byte("# stage"), 0o600))

	outcome, err := p.Provision(context.Background(), Request{Argument: "007-billing", Cwd: root})
	require.NoError(t, err)

	assert.Equal(t, taskmode.PlanningStage, outcome.Identity.Mode)
	assert.Equal(t, "task-1", outcome.Identity.TaskDirName)
	assert.Equal(t, "task/007-billing/task-1", outcome.BranchName)
	assert.DirExists(t, filepath.Join(stageDir, "task-1"))
}

func TestProvisionPlanningStageMissingDirectoryIsFatal(t *testing.T) {
	fake := &gitexec.FakeRunner{}
	p, root := newTestProvisioner(t, fake)

	_, err := p.Provision(context.Background(), Request{Argument: "007-billing", Cwd: root})
	require.Error(t, err)

	var missing *MissingPrerequisiteError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "007-billing", missing.Stage)
}

func TestProvisionPlanningStageMissingManifestIsFatal(t *testing.T) {
	fake := &gitexec.FakeRunner{}
	p, root := newTestProvisioner(t, fake)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "stages", "007-billing"), 0o750))

	_, err := p.Provision(context.Background(), Request{Argument: "007-billing", Cwd: root})
	require.Error(t, err)

	var missing *MissingPrerequisiteError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Reason, paths.StageManifestFileName)
}

func TestProvisionDirtyWorkspaceAbortsBeforeMutation(t *testing.T) {
	fake := &gitexec.FakeRunner{Status: " M main.go"}
	p, root := newTestProvisioner(t, fake)

	_, err := p.Provision(context.Background(), Request{Argument: "fix the thing", Cwd: root})
	require.Error(t, err)

	var dirty *gitexec.DirtyWorkingTreeError
	require.ErrorAs(t, err, &dirty)
	assert.NoDirExists(t, filepath.Join(root, "docs", "plan", "task-1"))
}

func TestProvisionNotARepositoryAborts(t *testing.T) {
	fake := &gitexec.FakeRunner{NotARepo: true}
	p, root := newTestProvisioner(t, fake)

	_, err := p.Provision(context.Background(), Request{Argument: "anything", Cwd: root})
	assert.ErrorIs(t, err, gitexec.ErrNotARepository)
}

func TestProvisionBranchFailureIsDowngradedToWarning(t *testing.T) {
	fake := &gitexec.FakeRunner{CreateErr: errors.New("ref locked")}
	p, root := newTestProvisioner(t, fake)

	outcome, err := p.Provision(context.Background(), Request{Argument: "fix the thing", Cwd: root})
	require.NoError(t, err, "branch failure must not fail the invocation")

	assert.NotEmpty(t, outcome.BranchWarning)
	assert.Contains(t, outcome.ContextMessage, "Warning: branch setup failed")
	// Directory survives the branch failure
	assert.DirExists(t, filepath.Join(root, "docs", "plan", "task-1"))
}

func TestProvisionExistingBranchIsCheckedOut(t *testing.T) {
	fake := &gitexec.FakeRunner{Branches: map[string]bool{"task/gh-42": true}}
	p, root := newTestProvisioner(t, fake)

	outcome, err := p.Provision(context.Background(), Request{Argument: "gh-42", Cwd: root})
	require.NoError(t, err)
	assert.False(t, outcome.BranchCreated)
	assert.Contains(t, outcome.ContextMessage, "Existing branch task/gh-42")
	assert.Equal(t, "task/gh-42", fake.Active)
}

func TestProvisionEmptyArgumentIsAdHoc(t *testing.T) {
	fake := &gitexec.FakeRunner{}
	p, root := newTestProvisioner(t, fake)

	outcome, err := p.Provision(context.Background(), Request{Argument: "", Cwd: root})
	require.NoError(t, err)
	assert.Equal(t, taskmode.AdHoc, outcome.Identity.Mode)
	assert.NotContains(t, outcome.ContextMessage, "Problem to solve")
}

func TestProvisionRejectsInfrastructureBaseDir(t *testing.T) {
	fake := &gitexec.FakeRunner{}
	p, root := newTestProvisioner(t, fake)
	p.Settings = &settings.Settings{Enabled: true, BaseDir: ".taskforge/tasks"}

	_, err := p.Provision(context.Background(), Request{Argument: "anything", Cwd: root})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".taskforge")
}

func TestProvisionHonorsSettingsOverrides(t *testing.T) {
	fake := &gitexec.FakeRunner{}
	p, root := newTestProvisioner(t, fake)
	p.Settings = &settings.Settings{
		Enabled:      true,
		BaseDir:      "work/tasks",
		BranchPrefix: "sessions/",
	}

	outcome, err := p.Provision(context.Background(), Request{Argument: "try it", Cwd: root})
	require.NoError(t, err)
	assert.Equal(t, "sessions/task-1", outcome.BranchName)
	assert.DirExists(t, filepath.Join(root, "work", "tasks", "task-1"))
}
