package commands

import (
	"context"

	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// listCommandConfig describes a command that reads one component kind of a
// solution.
type listCommandConfig[T any] struct {
	Use     string
	Aliases []string
	Short   string
	Long    string
	Noun    string
	List    func(ctx context.Context, client dataverse.Client, solution string) ([]T, error)
	View    func([]T) tableView
}

func newListCommand[T any](app *App, cfg listCommandConfig[T]) *cobra.Command {
	return &cobra.Command{
		Use:     cfg.Use + " [SOLUTION]",
		Aliases: cfg.Aliases,
		Short:   cfg.Short,
		Long:    cfg.Long,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			solution, err := app.solutionName(args)
			if err != nil {
				return err
			}

			client, err := app.client(cmd.Context())
			if err != nil {
				return err
			}

			items, err := cfg.List(cmd.Context(), client, solution)
			if err != nil {
				return err
			}

			app.logger.Info("Read solution components",
				zap.String("solution", solution), zap.String("kind", cfg.Noun), zap.Int("count", len(items)))

			return app.render(items, cfg.View(items))
		},
	}
}

// NewEnvironmentVariablesCommand creates the envvars command.
func NewEnvironmentVariablesCommand(app *App) *cobra.Command {
	return newListCommand(app, listCommandConfig[dataverse.EnvironmentVariable]{
		Use:     "envvars",
		Aliases: []string{"environment-variables", "env"},
		Short:   "List environment variables of a solution",
		Long:    "List environment variable definitions of a solution with their default and current values",
		Noun:    "environment variables",
		List: func(ctx context.Context, client dataverse.Client, solution string) ([]dataverse.EnvironmentVariable, error) {
			return client.EnvironmentVariables().List(ctx, solution)
		},
		View: environmentVariablesView,
	})
}

// NewQueuesCommand creates the queues command.
func NewQueuesCommand(app *App) *cobra.Command {
	return newListCommand(app, listCommandConfig[dataverse.Queue]{
		Use:     "queues",
		Aliases: []string{"queue"},
		Short:   "List queues of a solution",
		Long:    "List routing queues of a solution with their type and mailbox settings",
		Noun:    "queues",
		List: func(ctx context.Context, client dataverse.Client, solution string) ([]dataverse.Queue, error) {
			return client.Queues().List(ctx, solution)
		},
		View: queuesView,
	})
}

// NewSecurityRolesCommand creates the roles command.
func NewSecurityRolesCommand(app *App) *cobra.Command {
	return newListCommand(app, listCommandConfig[dataverse.SecurityRole]{
		Use:     "roles",
		Aliases: []string{"security-roles"},
		Short:   "List security roles of a solution",
		Long:    "List root security roles of a solution with their business unit",
		Noun:    "security roles",
		List: func(ctx context.Context, client dataverse.Client, solution string) ([]dataverse.SecurityRole, error) {
			return client.SecurityRoles().List(ctx, solution)
		},
		View: securityRolesView,
	})
}

// NewOptionSetsCommand creates the optionsets command.
func NewOptionSetsCommand(app *App) *cobra.Command {
	return newListCommand(app, listCommandConfig[dataverse.OptionSet]{
		Use:     "optionsets",
		Aliases: []string{"option-sets", "choices"},
		Short:   "List global option sets of a solution",
		Long:    "List global choices of a solution with their values and labels",
		Noun:    "option sets",
		List: func(ctx context.Context, client dataverse.Client, solution string) ([]dataverse.OptionSet, error) {
			return client.OptionSets().List(ctx, solution)
		},
		View: optionSetsView,
	})
}

// NewProcessesCommand creates the processes command.
func NewProcessesCommand(app *App) *cobra.Command {
	return newListCommand(app, listCommandConfig[dataverse.Process]{
		Use:     "processes",
		Aliases: []string{"workflows"},
		Short:   "List classic processes of a solution",
		Long:    "List workflows, business rules, actions and business process flows of a solution",
		Noun:    "processes",
		List: func(ctx context.Context, client dataverse.Client, solution string) ([]dataverse.Process, error) {
			return client.Processes().List(ctx, solution)
		},
		View: processesView,
	})
}

// NewCloudFlowsCommand creates the flows command.
func NewCloudFlowsCommand(app *App) *cobra.Command {
	return newListCommand(app, listCommandConfig[dataverse.CloudFlow]{
		Use:     "flows",
		Aliases: []string{"cloud-flows"},
		Short:   "List cloud flows of a solution",
		Long:    "List Power Automate cloud flows of a solution with their triggers, action count and connectors",
		Noun:    "cloud flows",
		List: func(ctx context.Context, client dataverse.Client, solution string) ([]dataverse.CloudFlow, error) {
			return client.CloudFlows().List(ctx, solution)
		},
		View: cloudFlowsView,
	})
}
