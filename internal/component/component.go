package component

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bootsmith/internal/config"
	"bootsmith/internal/dracut"
	"bootsmith/internal/fsutil"
	"bootsmith/internal/logger"
	"bootsmith/internal/mount"
)

// Runner executes the initramfs generator.
type Runner interface {
	Run(ctx context.Context) error
}

// Mounter acquires and releases the pseudo filesystems of a build root.
type Mounter interface {
	Enter() error
	Leave() error
}

// Manager drives the lifecycle hooks of a boot environment component.
type Manager struct {
	cfg        *config.Config
	newMounter func(root string) Mounter
	newRunner  func(spec dracut.Spec, root string) Runner
}

// New creates a [Manager] for the given configuration.
func New(cfg *config.Config) *Manager {
	return &Manager{
		cfg: cfg,
		newMounter: func(root string) Mounter {
			return mount.NewSession(root, mount.BuildRootPoints())
		},
		newRunner: func(spec dracut.Spec, root string) Runner {
			return dracut.NewCommand(spec, root)
		},
	}
}

// Install copies the boot module script tree into the initramfs builder's
// module directory. The tree is installed under its own base name, so a
// source of "modules.d/90bootenv" ends up as "<module_dir>/90bootenv".
//
// Any copy failure is fatal and surfaces unchanged.
func (m *Manager) Install(ctx context.Context) error {
	ctx = logger.WithName(ctx, "install")
	ctx = logger.WithKV(ctx, "component", m.cfg.ComponentName)

	target := filepath.Join(m.cfg.ModuleDir, filepath.Base(m.cfg.ModuleSource))

	logger.InfoKV(ctx, "Installing boot module",
		"source", m.cfg.ModuleSource,
		"target", target,
	)

	if err := fsutil.CopyTree(m.cfg.ModuleSource, target); err != nil {
		return fmt.Errorf("install module: %w", err)
	}

	return nil
}

// PostInstall regenerates the boot image and publishes it:
//
//  1. acquire proc, dev, sys and run inside the build root,
//  2. run the generator chrooted into the build root,
//  3. release the mounts, regardless of the generator's outcome,
//  4. publish the image with mode 0644 and remove the temporary copy.
//
// The steps are strictly ordered and each failure is fatal. There are no
// retries and no rollback of completed steps; a failed run is left for the
// operator to diagnose.
func (m *Manager) PostInstall(ctx context.Context) error {
	ctx = logger.WithName(ctx, "postinst")
	ctx = logger.WithKV(ctx, "component", m.cfg.ComponentName)

	spec := dracut.NewSpec(m.cfg.Generator, m.cfg.TempArchive)
	runner := m.newRunner(spec, m.cfg.BuildRoot)
	mounter := m.newMounter(m.cfg.BuildRoot)

	logger.InfoKV(ctx, "Generating boot image",
		"root", m.cfg.BuildRoot,
		"output", m.cfg.TempArchive,
	)

	if err := mounter.Enter(); err != nil {
		return fmt.Errorf("mount build root: %w", err)
	}

	genErr := runner.Run(ctx)

	if err := mounter.Leave(); err != nil {
		genErr = errors.Join(genErr, fmt.Errorf("release build root: %w", err))
	}

	if genErr != nil {
		return fmt.Errorf("generate image: %w", genErr)
	}

	return m.publish(ctx)
}

// publish moves the generated image from its temporary location to the final
// artifact path.
func (m *Manager) publish(ctx context.Context) error {
	temp := m.cfg.TempArchiveHostPath()
	final := m.cfg.ArtifactPath()

	if err := os.Chmod(temp, config.ArtifactMode); err != nil {
		return fmt.Errorf("chmod image: %w", err)
	}

	if err := fsutil.EnsureDir(m.cfg.ArtifactDir); err != nil {
		return err
	}

	if err := fsutil.CopyFile(temp, final, config.ArtifactMode); err != nil {
		return fmt.Errorf("publish image: %w", err)
	}

	if err := os.Remove(temp); err != nil {
		return fmt.Errorf("remove temporary image: %w", err)
	}

	logger.InfoKV(ctx, "Boot image published", "path", final)

	return nil
}
