package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/photobooth/pkg/buildinfo"
	"github.com/matzehuels/photobooth/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
// Library events are forwarded to the CLI logger for the lifetime of the
// command.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "A terminal photo booth",
		Long:         `Photobooth runs a countdown-driven photo booth in the terminal, captures a strip of shots and composes them into a decorated photo strip.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			hooks := newLogHooks(c.Logger)
			observability.SetCaptureHooks(hooks)
			observability.SetComposeHooks(hooks)
			observability.SetCacheHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.config/photobooth/config.toml)")

	// Register all subcommands
	root.AddCommand(c.boothCommand())
	root.AddCommand(c.shootCommand())
	root.AddCommand(c.composeCommand())
	root.AddCommand(c.layoutsCommand())
	root.AddCommand(c.decorationsCommand())
	root.AddCommand(c.themeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
