package cli

import (
	"github.com/spf13/cobra"

	"bootsmith/internal/component"
)

// newInstallCommand builds the install hook subcommand.
func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the boot module scripts into the builder's module directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if err := announceComponent(cmd.Context()); err != nil {
				return err
			}

			return component.New(cfg).Install(cmd.Context())
		},
	}
}

// newPostinstCommand builds the post-install hook subcommand.
func newPostinstCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "postinst",
		Short: "Regenerate and publish the boot-time filesystem image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if err := announceComponent(cmd.Context()); err != nil {
				return err
			}

			return component.New(cfg).PostInstall(cmd.Context())
		},
	}
}
