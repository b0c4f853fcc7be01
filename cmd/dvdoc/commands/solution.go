package commands

import (
	"github.com/spf13/cobra"
)

// NewSolutionCommand creates the solution command.
func NewSolutionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "solution [SOLUTION]",
		Short: "Show solution details",
		Long:  "Resolve a solution by unique name and display its identifier, version and publisher",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.solutionName(args)
			if err != nil {
				return err
			}

			client, err := app.client(cmd.Context())
			if err != nil {
				return err
			}

			solution, err := client.Solutions().Get(cmd.Context(), name)
			if err != nil {
				return err
			}

			return app.render(solution, solutionView(solution))
		},
	}
}

// NewWhoAmICommand creates the whoami command.
func NewWhoAmICommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check the connection",
		Long:  "Sign in and call the WhoAmI function to show the user, business unit and organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.client(cmd.Context())
			if err != nil {
				return err
			}

			whoAmI, err := client.WhoAmI(cmd.Context())
			if err != nil {
				return err
			}

			return app.render(whoAmI, whoAmIView(whoAmI))
		},
	}
}
