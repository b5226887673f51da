package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bootsmith/internal/component"
	"bootsmith/internal/logger"
)

// newRevCommand builds the rev subcommand. It bumps the component manifest
// to the next stable revision.
func newRevCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rev",
		Short: "Bump the component to its next stable revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manifest, err := component.LoadManifest(manifestPath)
			if err != nil {
				return err
			}

			previous := manifest.Version

			next, err := manifest.Rev()
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s (dry run)\n",
					manifest.Name, previous, next)

				return nil
			}

			if err := component.SaveManifest(manifestPath, manifest); err != nil {
				return err
			}

			logger.InfoKV(cmd.Context(), "Revved component",
				"name", manifest.Name,
				"from", previous,
				"to", next,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", manifest.Name, previous, next)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false,
		"show the next revision without writing the manifest")

	return cmd
}
