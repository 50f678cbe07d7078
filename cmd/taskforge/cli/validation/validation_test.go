package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid UUID-style", "abc-123-def", false},
		{"valid alphanumeric", "session20260823", false},
		{"empty", "", true},
		{"forward slash", "abc/def", true},
		{"backslash", `abc\def`, true},
		{"path traversal", "../escape", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTaskDirName(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		wantErr bool
	}{
		{"task dir", "task-1", false},
		{"issue dir", "gh-42", false},
		{"underscores", "task_1", false},
		{"empty", "", true},
		{"slash", "task/1", true},
		{"dotdot", "..", true},
		{"spaces", "task 1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaskDirName(tt.dir)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBranchName(t *testing.T) {
	tests := []struct {
		name    string
		branch  string
		wantErr bool
	}{
		{"simple", "task/task-1", false},
		{"issue branch", "task/gh-42", false},
		{"stage branch", "task/007-billing/task-3", false},
		{"dotted component", "release/v1.2", false},
		{"empty", "", true},
		{"leading slash", "/task/task-1", true},
		{"trailing slash", "task/task-1/", true},
		{"empty component", "task//task-1", true},
		{"dotdot component", "task/../task-1", true},
		{"space in component", "task/my branch", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBranchName(tt.branch)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
