// Package settings provides configuration loading for Taskforge.
// This package is separate from cli so lower-level packages can import it
// without creating an import cycle.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taskforge/cli/cmd/taskforge/cli/jsonutil"
	"github.com/taskforge/cli/cmd/taskforge/cli/paths"
)

const (
	// SettingsFile is the path to the Taskforge settings file
	SettingsFile = ".taskforge/settings.json"
	// SettingsLocalFile is the path to the local settings override file (not committed)
	SettingsLocalFile = ".taskforge/settings.local.json"
)

// Settings represents the .taskforge/settings.json configuration
type Settings struct {
	// Enabled indicates whether Taskforge is active. When false, CLI commands
	// show a disabled message and hooks exit silently. Defaults to true.
	Enabled bool `json:"enabled"`

	// LocalDev indicates whether to use "go run" instead of the "taskforge"
	// binary in installed hook commands.
	LocalDev bool `json:"local_dev,omitempty"`

	// LogLevel sets the logging verbosity (debug, info, warn, error).
	// Can be overridden by TASKFORGE_LOG_LEVEL environment variable.
	// Defaults to "info".
	LogLevel string `json:"log_level,omitempty"`

	// BaseDir overrides the base directory for ad-hoc task sessions.
	// Defaults to docs/plan when empty.
	BaseDir string `json:"base_dir,omitempty"`

	// BranchPrefix overrides the namespace for task branches.
	// Defaults to "task/" when empty.
	BranchPrefix string `json:"branch_prefix,omitempty"`

	// Telemetry controls anonymous usage analytics.
	// nil = not asked yet (show prompt), true = opted in, false = opted out
	Telemetry *bool `json:"telemetry,omitempty"`
}

// Load loads the Taskforge settings from .taskforge/settings.json,
// then applies any overrides from .taskforge/settings.local.json if it exists.
// Returns default settings if neither file exists.
// Works correctly from any subdirectory within the repository.
func Load() (*Settings, error) {
	settingsFileAbs, err := paths.AbsPath(SettingsFile)
	if err != nil {
		settingsFileAbs = SettingsFile // Fallback to relative
	}
	localSettingsFileAbs, err := paths.AbsPath(SettingsLocalFile)
	if err != nil {
		localSettingsFileAbs = SettingsLocalFile // Fallback to relative
	}

	settings, err := loadFromFile(settingsFileAbs)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	// Apply local overrides if they exist
	localData, err := os.ReadFile(localSettingsFileAbs) //nolint:gosec // path is from AbsPath or constant
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading local settings file: %w", err)
		}
		// Local file doesn't exist, continue without overrides
	} else {
		if err := mergeJSON(settings, localData); err != nil {
			return nil, fmt.Errorf("merging local settings: %w", err)
		}
	}

	return settings, nil
}

// loadFromFile loads settings from a specific file path.
// Returns default settings if the file doesn't exist.
func loadFromFile(filePath string) (*Settings, error) {
	settings := &Settings{
		Enabled: true, // Default to enabled
	}

	data, err := os.ReadFile(filePath) //nolint:gosec // path is from caller
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("%w", err)
	}

	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}

	return settings, nil
}

// mergeJSON merges JSON data into existing settings.
// Only fields present in the JSON override existing settings.
func mergeJSON(settings *Settings, data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}

	if enabledRaw, ok := raw["enabled"]; ok {
		var e bool
		if err := json.Unmarshal(enabledRaw, &e); err != nil {
			return fmt.Errorf("parsing enabled field: %w", err)
		}
		settings.Enabled = e
	}

	if localDevRaw, ok := raw["local_dev"]; ok {
		var ld bool
		if err := json.Unmarshal(localDevRaw, &ld); err != nil {
			return fmt.Errorf("parsing local_dev field: %w", err)
		}
		settings.LocalDev = ld
	}

	if logLevelRaw, ok := raw["log_level"]; ok {
		var ll string
		if err := json.Unmarshal(logLevelRaw, &ll); err != nil {
			return fmt.Errorf("parsing log_level field: %w", err)
		}
		if ll != "" {
			settings.LogLevel = ll
		}
	}

	if baseDirRaw, ok := raw["base_dir"]; ok {
		var bd string
		if err := json.Unmarshal(baseDirRaw, &bd); err != nil {
			return fmt.Errorf("parsing base_dir field: %w", err)
		}
		if bd != "" {
			settings.BaseDir = bd
		}
	}

	if branchPrefixRaw, ok := raw["branch_prefix"]; ok {
		var bp string
		if err := json.Unmarshal(branchPrefixRaw, &bp); err != nil {
			return fmt.Errorf("parsing branch_prefix field: %w", err)
		}
		if bp != "" {
			settings.BranchPrefix = bp
		}
	}

	if telemetryRaw, ok := raw["telemetry"]; ok {
		var t bool
		if err := json.Unmarshal(telemetryRaw, &t); err != nil {
			return fmt.Errorf("parsing telemetry field: %w", err)
		}
		settings.Telemetry = &t
	}

	return nil
}

// Save writes the settings to .taskforge/settings.json at the repository root,
// creating the .taskforge directory if needed.
func Save(s *Settings) error {
	settingsFileAbs, err := paths.AbsPath(SettingsFile)
	if err != nil {
		settingsFileAbs = SettingsFile
	}
	return saveToFile(s, settingsFileAbs)
}

// SaveLocal writes the settings to .taskforge/settings.local.json.
func SaveLocal(s *Settings) error {
	settingsFileAbs, err := paths.AbsPath(SettingsLocalFile)
	if err != nil {
		settingsFileAbs = SettingsLocalFile
	}
	return saveToFile(s, settingsFileAbs)
}

func saveToFile(s *Settings, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	data, err := jsonutil.MarshalIndentWithNewline(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// AdHocBaseDir returns the configured base directory for ad-hoc tasks,
// defaulting to docs/plan.
func (s *Settings) AdHocBaseDir() string {
	if s.BaseDir != "" {
		return s.BaseDir
	}
	return paths.PlanBaseDir
}

// TaskBranchPrefix returns the configured branch namespace, defaulting to "task/".
func (s *Settings) TaskBranchPrefix() string {
	if s.BranchPrefix != "" {
		return s.BranchPrefix
	}
	return paths.BranchPrefix
}
