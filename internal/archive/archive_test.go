package archive_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cavaliergopher/cpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootsmith/internal/archive"
)

// buildArchive writes a minimal newc cpio stream, the way an uncompressed
// generator run produces one.
func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	writer := cpio.NewWriter(&buf)

	for name, contents := range files {
		hdr := &cpio.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(contents)),
		}
		require.NoError(t, writer.WriteHeader(hdr))

		_, err := writer.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	return buf.Bytes()
}

func TestList(t *testing.T) {
	contents := buildArchive(t, map[string]string{
		"init":            "#!/bin/sh\n",
		"etc/fstab":       "# empty\n",
		"usr/bin/bootenv": "#!/bin/sh\necho bootenv\n",
	})

	entries, err := archive.List(bytes.NewReader(contents))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := make(map[string]archive.Entry, len(entries))
	for _, entry := range entries {
		byName[entry.Name] = entry
	}

	require.Contains(t, byName, "init")
	assert.Equal(t, int64(10), byName["init"].Size)
	require.Contains(t, byName, "etc/fstab")
	require.Contains(t, byName, "usr/bin/bootenv")
}

func TestListTruncated(t *testing.T) {
	contents := buildArchive(t, map[string]string{"init": "#!/bin/sh\n"})

	_, err := archive.List(bytes.NewReader(contents[:20]))
	require.Error(t, err)
}

func TestListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "initramfs.img")
	contents := buildArchive(t, map[string]string{"init": "#!/bin/sh\n"})
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	entries, err := archive.ListFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListFileMissing(t *testing.T) {
	_, err := archive.ListFile(filepath.Join(t.TempDir(), "missing.img"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestVerify(t *testing.T) {
	contents := buildArchive(t, map[string]string{
		"init":      "#!/bin/sh\n",
		"etc/fstab": "# empty\n",
	})

	count, err := archive.Verify(bytes.NewReader(contents))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVerifyEmpty(t *testing.T) {
	contents := buildArchive(t, nil)

	_, err := archive.Verify(bytes.NewReader(contents))
	require.ErrorIs(t, err, archive.ErrNoEntries)
}
