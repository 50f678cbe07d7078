package claudesettings

// Settings represents the .claude/settings.json structure, limited to the
// fields we manage. Unknown top-level fields are preserved as raw JSON by the
// install path.
type Settings struct {
	Hooks Hooks `json:"hooks"`
}

// Hooks contains the hook configurations. Only UserPromptSubmit is managed
// here; other hook kinds pass through untouched.
type Hooks struct {
	SessionStart     []HookMatcher `json:"SessionStart,omitempty"`
	UserPromptSubmit []HookMatcher `json:"UserPromptSubmit,omitempty"`
	Stop             []HookMatcher `json:"Stop,omitempty"`
	PreToolUse       []HookMatcher `json:"PreToolUse,omitempty"`
	PostToolUse      []HookMatcher `json:"PostToolUse,omitempty"`
}

// HookMatcher matches hooks to specific tool patterns.
type HookMatcher struct {
	Matcher string      `json:"matcher"`
	Hooks   []HookEntry `json:"hooks"`
}

// HookEntry represents a single hook command.
type HookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// PromptHookInput is the JSON structure delivered on stdin by the
// UserPromptSubmit hook.
type PromptHookInput struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	Prompt         string `json:"prompt"`
	Cwd            string `json:"cwd"`
}
