package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cavaliergopher/cpio"
)

// ErrNoEntries is returned by [Verify] for an archive without any entries.
var ErrNoEntries = errors.New("archive has no entries")

// Entry is a single file in a cpio archive.
type Entry struct {
	Name string
	Size int64
	Mode fs.FileMode
}

// List reads the uncompressed cpio stream and returns all entries in archive
// order. Entry bodies are skipped, only headers are decoded.
func List(r io.Reader) ([]Entry, error) {
	reader := cpio.NewReader(r)

	var entries []Entry

	for {
		hdr, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}

		entries = append(entries, Entry{
			Name: hdr.Name,
			Size: hdr.Size,
			Mode: hdr.FileInfo().Mode(),
		})
	}

	return entries, nil
}

// ListFile is [List] for an archive file on disk.
func ListFile(path string) ([]Entry, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	return List(file)
}

// Verify walks all headers of the archive and returns the number of entries.
// It fails if any header is unreadable or the archive is empty. Contents are
// not inspected; they are owned by the generator.
func Verify(r io.Reader) (int, error) {
	entries, err := List(r)
	if err != nil {
		return 0, err
	}

	if len(entries) == 0 {
		return 0, ErrNoEntries
	}

	return len(entries), nil
}
