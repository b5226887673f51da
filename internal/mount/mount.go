package mount

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Type is the kind of mount to establish.
type Type string

const (
	// TypeProc mounts a fresh proc instance.
	TypeProc Type = "proc"
	// TypeBind recursively bind-mounts a host directory.
	TypeBind Type = "bind"

	targetDirMode = 0o755
)

// Point describes a single mount inside a build root. Target is the absolute
// path as seen inside the root. Source is the host directory for bind mounts
// and is unused for pseudo filesystem types.
type Point struct {
	Target string
	Source string
	Type   Type
}

// BuildRootPoints returns the pseudo filesystems the initramfs generator
// needs inside the build root: a fresh proc plus recursive binds of the
// host's dev, sys and run.
func BuildRootPoints() []Point {
	return []Point{
		{Target: "/proc", Type: TypeProc},
		{Target: "/dev", Source: "/dev", Type: TypeBind},
		{Target: "/sys", Source: "/sys", Type: TypeBind},
		{Target: "/run", Source: "/run", Type: TypeBind},
	}
}

type (
	mountFunc   func(source, target, fstype string, flags uintptr, data string) error
	unmountFunc func(target string, flags int) error
)

// Session tracks mounts established inside a build root so they can be
// released in reverse order. A Session guarantees that everything it mounted
// is unmounted again, regardless of what happens in between.
type Session struct {
	root    string
	points  []Point
	mounted []string
	mount   mountFunc
	unmount unmountFunc
}

// NewSession creates a [Session] for the given build root.
func NewSession(root string, points []Point) *Session {
	return &Session{
		root:    root,
		points:  points,
		mount:   unix.Mount,
		unmount: unix.Unmount,
	}
}

// Enter establishes all mount points in order. Missing target directories
// are created. If any mount fails, the ones already established are released
// before the error is returned.
func (s *Session) Enter() error {
	for _, point := range s.points {
		target := filepath.Join(s.root, point.Target)

		if err := os.MkdirAll(target, targetDirMode); err != nil {
			return errors.Join(fmt.Errorf("mkdir %s: %w", target, err), s.Leave())
		}

		var (
			source, fstype string
			flags          uintptr
		)

		switch point.Type {
		case TypeBind:
			source = point.Source
			flags = unix.MS_BIND | unix.MS_REC
		default:
			source = string(point.Type)
			fstype = string(point.Type)
		}

		if err := s.mount(source, target, fstype, flags, ""); err != nil {
			return errors.Join(fmt.Errorf("mount %s: %w", target, err), s.Leave())
		}

		s.mounted = append(s.mounted, target)
	}

	return nil
}

// Leave unmounts everything the session mounted, in reverse order. Targets
// that refuse a plain unmount are detached lazily, which is the usual case
// for recursive bind mounts carrying submounts. Leave is safe to call more
// than once.
func (s *Session) Leave() error {
	var errs []error

	for i := len(s.mounted) - 1; i >= 0; i-- {
		target := s.mounted[i]

		err := s.unmount(target, 0)
		if err != nil {
			err = s.unmount(target, unix.MNT_DETACH)
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("unmount %s: %w", target, err))
		}
	}

	s.mounted = nil

	return errors.Join(errs...)
}

// With acquires the mounts, runs fn and always releases the mounts again.
// The error of fn and any release error are joined.
func (s *Session) With(fn func() error) error {
	if err := s.Enter(); err != nil {
		return err
	}

	return errors.Join(fn(), s.Leave())
}

// Active returns the currently mounted targets in mount order.
func (s *Session) Active() []string {
	active := make([]string, len(s.mounted))
	copy(active, s.mounted)

	return active
}
