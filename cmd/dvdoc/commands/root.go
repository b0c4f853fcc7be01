package commands

import (
	"github.com/fivetwenty-io/dvdoc/internal/config"
	"github.com/spf13/cobra"
)

const skipSettingsAnnotation = "dvdoc/skip-settings"

// NewRootCommand creates the dvdoc root command with every subcommand.
func NewRootCommand(app *App, info BuildInfo) *cobra.Command {
	app.info = info

	rootCmd := &cobra.Command{
		Use:   "dvdoc",
		Short: "Dataverse solution documentation",
		Long: `A command-line tool that reads the metadata of a Dataverse solution and
documents it.

It covers environment variables, queues, security roles, global option sets,
classic processes, cloud flows and entity relationship diagrams.`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipSettingsAnnotation] != "" {
				return nil
			}

			return app.configure(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.dvdoc/config.yml)")
	flags.Bool("prompt-secret", false, "read the client secret from the terminal")
	config.RegisterFlags(flags)

	rootCmd.AddCommand(NewVersionCommand(app))
	rootCmd.AddCommand(NewConfigCommand(app))
	rootCmd.AddCommand(NewWhoAmICommand(app))
	rootCmd.AddCommand(NewSolutionCommand(app))
	rootCmd.AddCommand(NewEnvironmentVariablesCommand(app))
	rootCmd.AddCommand(NewQueuesCommand(app))
	rootCmd.AddCommand(NewSecurityRolesCommand(app))
	rootCmd.AddCommand(NewOptionSetsCommand(app))
	rootCmd.AddCommand(NewProcessesCommand(app))
	rootCmd.AddCommand(NewCloudFlowsCommand(app))
	rootCmd.AddCommand(NewDiagramCommand(app))
	rootCmd.AddCommand(NewDocumentCommand(app))

	return rootCmd
}
