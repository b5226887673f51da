package dracut

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBinary(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
	require.NoError(t, os.Chmod(path, mode))
}

func TestLookPathIn(t *testing.T) {
	root := t.TempDir()
	writeBinary(t, filepath.Join(root, "usr/bin/dracut"), 0o755)

	path, err := lookPathIn(root, "dracut")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/dracut", path)
}

func TestLookPathInSearchOrder(t *testing.T) {
	root := t.TempDir()
	writeBinary(t, filepath.Join(root, "usr/sbin/dracut"), 0o755)
	writeBinary(t, filepath.Join(root, "sbin/dracut"), 0o755)

	path, err := lookPathIn(root, "dracut")
	require.NoError(t, err)
	assert.Equal(t, "/usr/sbin/dracut", path)
}

func TestLookPathInExplicitPath(t *testing.T) {
	root := t.TempDir()
	writeBinary(t, filepath.Join(root, "opt/dracut/dracut.sh"), 0o755)

	path, err := lookPathIn(root, "/opt/dracut/dracut.sh")
	require.NoError(t, err)
	assert.Equal(t, "/opt/dracut/dracut.sh", path)
}

func TestLookPathInSkipsNonExecutable(t *testing.T) {
	root := t.TempDir()
	writeBinary(t, filepath.Join(root, "usr/bin/dracut"), 0o644)
	writeBinary(t, filepath.Join(root, "bin/dracut"), 0o755)

	path, err := lookPathIn(root, "dracut")
	require.NoError(t, err)
	assert.Equal(t, "/bin/dracut", path)
}

func TestLookPathInNotFound(t *testing.T) {
	_, err := lookPathIn(t.TempDir(), "dracut")
	require.ErrorIs(t, err, ErrBinaryNotFound)
}
