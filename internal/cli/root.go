package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bootsmith/internal/component"
	"bootsmith/internal/config"
	"bootsmith/internal/logger"
	"bootsmith/internal/version"
)

var (
	// configPath is the path to the configuration YAML file.
	configPath string
	// manifestPath is the path to the component manifest.
	manifestPath string
	// logLevel is the textual log level of the run.
	logLevel string
)

// newRootCommand builds the bootsmith command tree.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "bootsmith",
		Short:         "Manage the boot environment component",
		Long:          "Bootsmith installs boot module scripts and regenerates the boot-time filesystem image of the managed component.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultFilename, "path to configuration file")
	flags.StringVarP(&manifestPath, "manifest", "m", component.DefaultManifestFilename, "path to component manifest")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error, fatal")

	root.AddCommand(
		newInstallCommand(),
		newPostinstCommand(),
		newInspectCommand(),
		newRevCommand(),
	)
	version.AttachCobraVersionCommand(root)

	return root
}

// Execute runs the bootsmith CLI and exits with non-zero status on error.
func Execute() {
	// Lifecycle hooks must not outlive an aborted build.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logger.Error(ctx, err.Error())
		os.Exit(1)
	}
}

// loadConfig reads the configured settings file. A missing file is not an
// error; the defaults of the shipped recipe apply then.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}

	return cfg, err
}

// announceComponent validates the manifest and logs the component identity
// before a hook runs. A missing manifest file is tolerated.
func announceComponent(ctx context.Context) error {
	manifest, err := component.LoadManifest(manifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.DebugKV(ctx, "No component manifest found", "path", manifestPath)
		return nil
	}

	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Managing component",
		"name", manifest.Name,
		"version", manifest.Version,
	)

	return nil
}
