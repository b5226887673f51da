package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"bootsmith/internal/archive"
	"bootsmith/internal/component"
)

// newInspectCommand builds the inspect subcommand. Without an argument it
// inspects the published artifact from the configuration.
func newInspectCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "inspect [archive]",
		Short: "Verify the generated boot image and show component metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			path := cfg.ArtifactPath()
			if len(args) == 1 {
				path = args[0]
			}

			out := cmd.OutOrStdout()

			if err := printManifest(out); err != nil {
				return err
			}

			entries, err := archive.ListFile(path)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				return fmt.Errorf("%s: %w", path, archive.ErrNoEntries)
			}

			if list {
				for _, entry := range entries {
					fmt.Fprintf(out, "%s %10d %s\n", entry.Mode, entry.Size, entry.Name)
				}
			}

			fmt.Fprintf(out, "%s: %d entries\n", path, len(entries))

			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "list all archive entries")

	return cmd
}

// printManifest writes the component metadata, if a manifest is present.
func printManifest(out io.Writer) error {
	manifest, err := component.LoadManifest(manifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(out, "component: %s %s\n", manifest.Name, manifest.Version)

	if len(manifest.Depends.Build) > 0 {
		fmt.Fprintf(out, "build depends: %s\n", strings.Join(manifest.Depends.Build, ", "))
	}

	if len(manifest.Depends.Runtime) > 0 {
		fmt.Fprintf(out, "runtime depends: %s\n", strings.Join(manifest.Depends.Runtime, ", "))
	}

	return nil
}
