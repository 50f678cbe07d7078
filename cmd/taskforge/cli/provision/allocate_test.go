package provision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, base string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(base, name), 0o750))
	}
}

func TestNextIDMissingDirectory(t *testing.T) {
	id, err := NextID(filepath.Join(t.TempDir(), "does-not-exist"), "task-")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestNextIDEmptyDirectory(t *testing.T) {
	id, err := NextID(t.TempDir(), "task-")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestNextIDReturnsMaxPlusOne(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t, dir, "task-5", "task-9", "task-x")

	id, err := NextID(dir, "task-")
	require.NoError(t, err)
	assert.Equal(t, 10, id, "max numeric suffix + 1; non-numeric entries ignored")
}

func TestNextIDSkipsGapsNeverReuses(t *testing.T) {
	dir := t.TempDir()
	// task-1 and task-2 were deleted at some point; only task-7 remains.
	mkdirs(t, dir, "task-7")

	id, err := NextID(dir, "task-")
	require.NoError(t, err)
	assert.Equal(t, 8, id, "allocation is max+1, not a count")
}

func TestNextIDIgnoresNonDirectoryEntries(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t, dir, "task-2")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "task-99"), []byte("a file"), 0o600))

	id, err := NextID(dir, "task-")
	require.NoError(t, err)
	assert.Equal(t, 3, id)
}

func TestNextIDIgnoresOtherPrefixes(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t, dir, "task-2", "gh-41", "notes")

	id, err := NextID(dir, "task-")
	require.NoError(t, err)
	assert.Equal(t, 3, id)
}

func TestEnsureDirIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "plan", "task-1")

	require.NoError(t, EnsureDir(path))
	require.NoError(t, EnsureDir(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
