// Package redact scrubs secrets from text before it is persisted into a
// repository. Issue bodies fetched from a tracker can carry API keys, tokens,
// or credentials pasted by reporters; everything written to disk passes
// through here first.
package redact

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// candidatePattern matches high-entropy strings that may be secrets.
var candidatePattern = regexp.MustCompile(`[A-Za-z0-9/+_=-]{10,}`)

// entropyThreshold is the minimum Shannon entropy for a string to be
// considered a secret. 4.5 is high enough to avoid false positives on common
// words and identifiers, low enough to catch typical API keys and tokens
// which tend to have entropy well above 5.0.
const entropyThreshold = 4.5

var (
	gitleaksDetector     *detect.Detector
	gitleaksDetectorOnce sync.Once
)

func getDetector() *detect.Detector {
	gitleaksDetectorOnce.Do(func() {
		d, err := detect.NewDetectorDefaultConfig()
		if err != nil {
			return
		}
		gitleaksDetector = d
	})
	return gitleaksDetector
}

// span is a byte range to redact.
type span struct{ start, end int }

// String replaces secrets in s with "REDACTED" using layered detection:
// entropy-based for high-entropy alphanumeric sequences, and pattern-based
// via the gitleaks default ruleset for known secret formats. A substring is
// redacted if either method flags it.
func String(s string) string {
	spans := detectSpans(s)
	if len(spans) == 0 {
		return s
	}

	var b strings.Builder
	prev := 0
	for _, sp := range mergeSpans(spans) {
		b.WriteString(s[prev:sp.start])
		b.WriteString("REDACTED")
		prev = sp.end
	}
	b.WriteString(s[prev:])
	return b.String()
}

// Bytes is a convenience wrapper around String for []byte content. The
// original slice is returned when nothing was redacted.
func Bytes(b []byte) []byte {
	s := string(b)
	redacted := String(s)
	if redacted == s {
		return b
	}
	return []byte(redacted)
}

func detectSpans(s string) []span {
	var spans []span

	for _, loc := range candidatePattern.FindAllStringIndex(s, -1) {
		if shannonEntropy(s[loc[0]:loc[1]]) > entropyThreshold {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}

	if d := getDetector(); d != nil {
		for _, f := range d.DetectString(s) {
			if f.Secret == "" {
				continue
			}
			searchFrom := 0
			for {
				idx := strings.Index(s[searchFrom:], f.Secret)
				if idx < 0 {
					break
				}
				absIdx := searchFrom + idx
				spans = append(spans, span{absIdx, absIdx + len(f.Secret)})
				searchFrom = absIdx + len(f.Secret)
			}
		}
	}

	return spans
}

// mergeSpans collapses overlapping or adjacent spans so each redacted run
// produces a single REDACTED token.
func mergeSpans(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})
	merged := []span{spans[0]}
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.start <= last.end {
			if sp.end > last.end {
				last.end = sp.end
			}
		} else {
			merged = append(merged, sp)
		}
	}
	return merged
}

func shannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	freq := make(map[byte]int)
	for i := range len(s) {
		freq[s[i]]++
	}
	length := float64(len(s))
	var entropy float64
	for _, count := range freq {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}
