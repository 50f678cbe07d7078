// Package taskmode classifies the raw /task argument into an addressing mode.
//
// Classification is total: every input maps to exactly one mode, with AdHoc
// as the fallback for free-form text (including the empty string).
package taskmode

import (
	"regexp"
	"strings"
)

// Mode is the addressing scheme for a task request.
type Mode int

const (
	// AdHoc is a free-form task; the identifier is the trimmed request text.
	AdHoc Mode = iota
	// GithubIssue addresses a task by GitHub issue number ("gh-42").
	GithubIssue
	// PlanningStage addresses a task inside a planning stage ("007-billing").
	PlanningStage
)

// String returns the mode name used in logs and context messages.
func (m Mode) String() string {
	switch m {
	case GithubIssue:
		return "github-issue"
	case PlanningStage:
		return "planning-stage"
	default:
		return "ad-hoc"
	}
}

var (
	// issueRegex matches "gh-<digits>" with a case-insensitive prefix.
	issueRegex = regexp.MustCompile(`^(?i:gh)-(\d+)$`)
	// stageRegex matches planning-stage identifiers: exactly three leading
	// digits, a dash, then word/dash characters.
	stageRegex = regexp.MustCompile(`^\d{3}-[A-Za-z0-9_-]+$`)
)

// Classify parses the raw task argument into a (mode, identifier) pair.
// Rules are tried in order, first match wins:
//
//   - "gh-<digits>" (case-insensitive prefix)  -> GithubIssue, "gh-<digits>"
//   - "NNN-<word>" (three digits, dash, word)  -> PlanningStage, full match
//   - anything else                            -> AdHoc, trimmed raw text
//
// Classification never fails; unparseable input is legitimate free text.
func Classify(raw string) (Mode, string) {
	trimmed := strings.TrimSpace(raw)

	if m := issueRegex.FindStringSubmatch(trimmed); m != nil {
		return GithubIssue, "gh-" + m[1]
	}
	if stageRegex.MatchString(trimmed) {
		return PlanningStage, trimmed
	}
	return AdHoc, trimmed
}

// IssueNumber extracts the digits from a normalized GithubIssue identifier
// ("gh-42" -> "42"). Returns empty string if the identifier does not match.
func IssueNumber(identifier string) string {
	m := issueRegex.FindStringSubmatch(identifier)
	if m == nil {
		return ""
	}
	return m[1]
}
