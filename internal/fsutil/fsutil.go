package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const defaultDirMode fs.FileMode = 0o755

var (
	// ErrNotDirectory is returned when a directory operand is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotRegularFile is returned when a file operand is not a regular file.
	ErrNotRegularFile = errors.New("not a regular file")
)

// CopyTree copies the directory tree at src into dst, recursively. Directory
// and file permission bits are preserved, symbolic links are recreated with
// their original targets. dst is created if it does not exist.
func CopyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: %w", src, ErrNotDirectory)
	}

	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		switch {
		case entry.IsDir():
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return fmt.Errorf("mkdir %s: %w", target, err)
			}
		case info.Mode()&fs.ModeSymlink != 0:
			linkTarget, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("readlink %s: %w", path, err)
			}

			if err := os.Symlink(linkTarget, target); err != nil {
				return fmt.Errorf("symlink %s: %w", target, err)
			}
		case info.Mode().IsRegular():
			if err := CopyFile(path, target, info.Mode().Perm()); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: %w", path, ErrNotRegularFile)
		}

		return nil
	})
}

// CopyFile copies the regular file at src to dst with the given permission
// mode. An existing destination file is truncated.
func CopyFile(src, dst string, mode fs.FileMode) error {
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", src, ErrNotRegularFile)
	}

	target, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(target, source); err != nil {
		_ = target.Close()
		return fmt.Errorf("copy %s: %w", dst, err)
	}

	if err := target.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	// The requested mode must win over a pre-existing file's mode and the
	// process umask.
	if err := os.Chmod(dst, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", dst, err)
	}

	return nil
}

// EnsureDir creates the directory and any missing parents.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, defaultDirMode); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}

	return nil
}
