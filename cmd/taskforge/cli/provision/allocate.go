package provision

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// NextID returns the next unused sequential identifier for task directories
// under dir whose names start with prefix.
//
// The identifier is computed as max(existing numeric suffixes) + 1, not a
// count: numbers are never reused even if earlier directories were deleted.
// A missing dir means no allocation state yet and yields 1.
//
// This is a read-then-create pattern, not atomic: two simultaneous
// invocations against the same dir can race to the same identifier. Accepted
// for single-operator usage.
func NextID(dir, prefix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	suffixRegex := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `(\d+)`)

	maxID := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		m := suffixRegex.FindStringSubmatch(name)
		if m == nil {
			// Suffix doesn't parse as a number; excluded from the max
			// computation, not an error.
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if id > maxID {
			maxID = id
		}
	}

	return maxID + 1, nil
}

// EnsureDir idempotently creates path and any missing ancestors.
// "Already exists" is success, not an error.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
