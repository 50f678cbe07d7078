package cli

import (
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// NewAccessibleForm builds a huh form that falls back to plain text prompts
// when ACCESSIBLE is set, for screen reader compatibility.
func NewAccessibleForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithAccessible(os.Getenv("ACCESSIBLE") != "")
}

// isInteractive reports whether stdin is a TTY. Prompts are skipped entirely
// in non-interactive contexts (CI, piped input).
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
