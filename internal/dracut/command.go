package dracut

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"bootsmith/internal/logger"
)

// Command runs the initramfs generator inside a build root.
type Command struct {
	// Spec describes the invocation.
	Spec Spec
	// Root is the chroot target. The generator binary is resolved inside
	// it. Empty or "/" runs against the host root without a chroot.
	Root string
}

// NewCommand creates a [Command] for the given spec and build root.
func NewCommand(spec Spec, root string) *Command {
	return &Command{
		Spec: spec,
		Root: root,
	}
}

// String returns a printable representation of the invocation.
func (c *Command) String() string {
	return c.Spec.Binary + " " + strings.Join(c.Spec.Args(), " ")
}

// Run executes the generator and streams its output line-wise into the
// logger. It blocks until the process has terminated and both output streams
// are drained. A non-zero exit is returned as a [CommandError] carrying the
// exit code.
func (c *Command) Run(ctx context.Context) error {
	binary := c.Spec.Binary

	chrooted := c.Root != "" && c.Root != "/"
	if chrooted {
		// The host's PATH is meaningless inside the chroot, so the
		// binary must be resolved against the build root.
		resolved, err := lookPathIn(c.Root, binary)
		if err != nil {
			return err
		}

		binary = resolved
	}

	//nolint:gosec // Binary and arguments are operator-supplied configuration.
	cmd := exec.CommandContext(ctx, binary, c.Spec.Args()...)
	cmd.Dir = "/"

	if chrooted {
		cmd.SysProcAttr = &syscall.SysProcAttr{Chroot: c.Root}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return &CommandError{Err: fmt.Errorf("start: %w", err)}
	}

	// The pipes must be drained before Wait closes them.
	group := errgroup.Group{}
	group.Go(func() error {
		return drain(stdout, func(line string) { logger.Debugf(ctx, "%s: %s", c.Spec.Binary, line) })
	})
	group.Go(func() error {
		return drain(stderr, func(line string) { logger.Warnf(ctx, "%s: %s", c.Spec.Binary, line) })
	})

	drainErr := group.Wait()

	if err := cmd.Wait(); err != nil {
		cmdErr := &CommandError{Err: err}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}

		return cmdErr
	}

	if drainErr != nil {
		return fmt.Errorf("process output: %w", drainErr)
	}

	return nil
}

// lookPathIn resolves name to an absolute path inside root. A bare name is
// searched in the usual binary directories, a name containing a separator is
// checked as given. The returned path is relative to root, suitable as argv
// for a chrooted process.
func lookPathIn(root, name string) (string, error) {
	candidates := []string{filepath.Join("/", name)}
	if !strings.Contains(name, "/") {
		candidates = make([]string, 0, len(binDirs))
		for _, dir := range binDirs {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(filepath.Join(root, candidate))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		if info.Mode().Perm()&0o111 == 0 {
			continue
		}

		return candidate, nil
	}

	return "", fmt.Errorf("%w: %s in %s", ErrBinaryNotFound, name, root)
}

// binDirs are the directories searched for a bare binary name inside a
// build root.
var binDirs = []string{"/usr/bin", "/usr/sbin", "/bin", "/sbin"}

const (
	// scanBufferSize is the initial line buffer of the output pumps.
	scanBufferSize = 64 * 1024
	// maxScanTokenSize caps a single output line. Longer lines abort the
	// scan but the pipe is still drained so the child never blocks on a
	// full pipe.
	maxScanTokenSize = 1024 * 1024
)

// drain reads reader line-wise and hands every line to fn. On a scan error
// the remaining output is discarded so the writing process can terminate.
func drain(reader io.Reader, fn func(string)) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, scanBufferSize), maxScanTokenSize)

	for scanner.Scan() {
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, reader)

		return fmt.Errorf("scan: %w", err)
	}

	return nil
}
