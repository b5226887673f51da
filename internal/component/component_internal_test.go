package component

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootsmith/internal/config"
	"bootsmith/internal/dracut"
)

type fakeMounter struct {
	events   *[]string
	enterErr error
	leaveErr error
}

func (f *fakeMounter) Enter() error {
	*f.events = append(*f.events, "enter")
	return f.enterErr
}

func (f *fakeMounter) Leave() error {
	*f.events = append(*f.events, "leave")
	return f.leaveErr
}

type fakeRunner struct {
	events *[]string
	fn     func() error
}

func (f *fakeRunner) Run(context.Context) error {
	*f.events = append(*f.events, "generate")

	if f.fn == nil {
		return nil
	}

	return f.fn()
}

// testConfig points every path of the default configuration into scratch
// directories.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()

	cfg := config.Default()
	cfg.ModuleSource = filepath.Join(base, "src", "90bootenv")
	cfg.ModuleDir = filepath.Join(base, "modules.d")
	cfg.BuildRoot = filepath.Join(base, "root")
	cfg.TempArchive = "/var/tmp/initramfs.img"
	cfg.ArtifactDir = filepath.Join(base, "share")

	require.NoError(t, os.MkdirAll(cfg.BuildRoot, 0o755))

	return cfg
}

// newTestManager wires a Manager with fakes and records the hook sequence.
func newTestManager(cfg *config.Config, mounter *fakeMounter, runner *fakeRunner) (*Manager, *dracut.Spec) {
	var capturedSpec dracut.Spec

	manager := New(cfg)
	manager.newMounter = func(string) Mounter { return mounter }
	manager.newRunner = func(spec dracut.Spec, _ string) Runner {
		capturedSpec = spec
		return runner
	}

	return manager, &capturedSpec
}

// writeArchive is the stand-in for a successful generator run.
func writeArchive(cfg *config.Config) func() error {
	return func() error {
		path := cfg.TempArchiveHostPath()

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}

		return os.WriteFile(path, []byte("archive"), 0o600)
	}
}

func TestManagerInstall(t *testing.T) {
	cfg := testConfig(t)

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.ModuleSource, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(cfg.ModuleSource, "module-setup.sh"), []byte("#!/bin/bash\n"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(cfg.ModuleSource, "scripts", "pre-pivot.sh"), []byte("#!/bin/sh\n"), 0o755))

	require.NoError(t, New(cfg).Install(context.Background()))

	target := filepath.Join(cfg.ModuleDir, "90bootenv")

	contents, err := os.ReadFile(filepath.Join(target, "module-setup.sh"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/bash\n", string(contents))

	assert.FileExists(t, filepath.Join(target, "scripts", "pre-pivot.sh"))
}

func TestManagerInstallSourceMissing(t *testing.T) {
	cfg := testConfig(t)

	err := New(cfg).Install(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestManagerPostInstall(t *testing.T) {
	cfg := testConfig(t)

	var events []string

	mounter := &fakeMounter{events: &events}
	runner := &fakeRunner{events: &events, fn: writeArchive(cfg)}
	manager, spec := newTestManager(cfg, mounter, runner)

	require.NoError(t, manager.PostInstall(context.Background()))

	assert.Equal(t, []string{"enter", "generate", "leave"}, events)
	assert.Equal(t, cfg.TempArchive, spec.Output)
	assert.Equal(t, "dracut", spec.Binary)

	info, err := os.Stat(cfg.ArtifactPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	contents, err := os.ReadFile(cfg.ArtifactPath())
	require.NoError(t, err)
	assert.Equal(t, "archive", string(contents))

	assert.NoFileExists(t, cfg.TempArchiveHostPath())
}

func TestManagerPostInstallGeneratorFails(t *testing.T) {
	cfg := testConfig(t)

	var events []string

	genErr := errors.New("generator failed")
	mounter := &fakeMounter{events: &events}
	runner := &fakeRunner{events: &events, fn: func() error { return genErr }}
	manager, _ := newTestManager(cfg, mounter, runner)

	err := manager.PostInstall(context.Background())
	require.ErrorIs(t, err, genErr)

	// The mounts are released even though generation failed, and nothing is
	// published.
	assert.Equal(t, []string{"enter", "generate", "leave"}, events)
	assert.NoFileExists(t, cfg.ArtifactPath())
}

func TestManagerPostInstallMountFails(t *testing.T) {
	cfg := testConfig(t)

	var events []string

	mountErr := errors.New("mount failed")
	mounter := &fakeMounter{events: &events, enterErr: mountErr}
	runner := &fakeRunner{events: &events}
	manager, _ := newTestManager(cfg, mounter, runner)

	err := manager.PostInstall(context.Background())
	require.ErrorIs(t, err, mountErr)

	// The generator never ran.
	assert.Equal(t, []string{"enter"}, events)
	assert.NoFileExists(t, cfg.ArtifactPath())
}

func TestManagerPostInstallReleaseFails(t *testing.T) {
	cfg := testConfig(t)

	var events []string

	leaveErr := errors.New("release failed")
	mounter := &fakeMounter{events: &events, leaveErr: leaveErr}
	runner := &fakeRunner{events: &events, fn: writeArchive(cfg)}
	manager, _ := newTestManager(cfg, mounter, runner)

	err := manager.PostInstall(context.Background())
	require.ErrorIs(t, err, leaveErr)

	assert.NoFileExists(t, cfg.ArtifactPath())
}

func TestManagerPostInstallRerun(t *testing.T) {
	cfg := testConfig(t)

	var events []string

	mounter := &fakeMounter{events: &events}
	runner := &fakeRunner{events: &events, fn: writeArchive(cfg)}
	manager, _ := newTestManager(cfg, mounter, runner)

	require.NoError(t, manager.PostInstall(context.Background()))
	require.NoError(t, manager.PostInstall(context.Background()))

	contents, err := os.ReadFile(cfg.ArtifactPath())
	require.NoError(t, err)
	assert.Equal(t, "archive", string(contents))
}
