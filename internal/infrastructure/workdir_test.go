package infrastructure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkDir_Unique(t *testing.T) {
	base := t.TempDir()

	a, err := NewWorkDir(base)
	require.NoError(t, err)
	b, err := NewWorkDir(base)
	require.NoError(t, err)

	assert.NotEqual(t, a.Path, b.Path)
	assert.True(t, strings.HasPrefix(filepath.Base(a.Path), workDirPrefix))
	assert.DirExists(t, a.Path)
	assert.True(t, filepath.IsAbs(a.Path))
}

func TestNewWorkDir_CreatesBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "deep", "base")

	wd, err := NewWorkDir(base)
	require.NoError(t, err)
	assert.DirExists(t, wd.Path)
}

func TestWorkDir_Cleanup(t *testing.T) {
	wd, err := NewWorkDir(t.TempDir())
	require.NoError(t, err)

	recorded := filepath.Join(wd.Path, "A - B.mp3")
	stray := filepath.Join(wd.Path, "A - B.part")
	require.NoError(t, os.WriteFile(recorded, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(stray, []byte("y"), 0644))

	require.NoError(t, wd.Cleanup([]string{recorded, filepath.Join(wd.Path, "already-gone.mp3")}))

	assert.NoFileExists(t, recorded)
	assert.NoFileExists(t, stray)
	assert.NoDirExists(t, wd.Path)
}

func TestWorkDir_CleanupIdempotent(t *testing.T) {
	wd, err := NewWorkDir(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, wd.Cleanup(nil))
	require.NoError(t, wd.Cleanup(nil))
}
