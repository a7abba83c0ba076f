package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseRemovesFiles(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "documents")
	dir, err := Acquire(base, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir.Path(), "a.pdf"), []byte("%PDF-"), 0o644))
	require.DirExists(t, dir.Path())

	require.NoError(t, dir.Release())
	assert.NoDirExists(t, dir.Path())
	assert.DirExists(t, base)
	require.NoError(t, dir.Release())
}

func TestConcurrentRunsDoNotShareDirectory(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	first, err := Acquire(base, false)
	require.NoError(t, err)
	second, err := Acquire(base, false)
	require.NoError(t, err)

	assert.NotEqual(t, first.Path(), second.Path())
	require.NoError(t, first.Release())
	assert.DirExists(t, second.Path())
}

func TestKeepLeavesDirectory(t *testing.T) {
	t.Parallel()

	dir, err := Acquire(t.TempDir(), true)
	require.NoError(t, err)
	require.NoError(t, dir.Release())
	assert.DirExists(t, dir.Path())
}
