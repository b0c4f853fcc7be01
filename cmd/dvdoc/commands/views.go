package commands

import (
	"strings"
	"time"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
)

func solutionView(solution *dataverse.Solution) tableView {
	return tableView{
		headers: []string{"Property", "Value"},
		rows: [][]string{
			{"Unique Name", solution.UniqueName},
			{"Display Name", orNotAvailable(solution.FriendlyName)},
			{"ID", solution.ID.String()},
			{"Version", orNotAvailable(solution.Version)},
			{"Managed", yesNo(solution.IsManaged)},
			{"Publisher", orNotAvailable(solution.Publisher)},
		},
	}
}

func whoAmIView(whoAmI *dataverse.WhoAmI) tableView {
	return tableView{
		headers: []string{"Property", "Value"},
		rows: [][]string{
			{"User ID", whoAmI.UserID.String()},
			{"Business Unit ID", whoAmI.BusinessUnitID.String()},
			{"Organization ID", whoAmI.OrganizationID.String()},
		},
	}
}

func environmentVariablesView(variables []dataverse.EnvironmentVariable) tableView {
	view := tableView{
		headers: []string{"Schema Name", "Display Name", "Type", "Default Value", "Current Value", "Required"},
		empty:   "No environment variables found",
	}

	for _, variable := range variables {
		view.rows = append(view.rows, []string{
			variable.SchemaName,
			variable.DisplayName,
			variable.Type,
			orNotAvailable(truncate(variable.DefaultValue, constants.DescriptionDisplayLength)),
			orNotAvailable(truncate(variable.CurrentValue, constants.DescriptionDisplayLength)),
			yesNo(variable.IsRequired),
		})
	}

	return view
}

func queuesView(queues []dataverse.Queue) tableView {
	view := tableView{
		headers: []string{"Name", "Type", "Email", "Email Enabled", "Description"},
		empty:   "No queues found",
	}

	for _, queue := range queues {
		view.rows = append(view.rows, []string{
			queue.Name,
			queue.Type,
			orNotAvailable(queue.EmailAddress),
			yesNo(queue.EmailEnabled),
			truncate(queue.Description, constants.DescriptionDisplayLength),
		})
	}

	return view
}

func securityRolesView(roles []dataverse.SecurityRole) tableView {
	view := tableView{
		headers: []string{"Name", "Business Unit", "Managed"},
		empty:   "No security roles found",
	}

	for _, role := range roles {
		view.rows = append(view.rows, []string{role.Name, orNotAvailable(role.BusinessUnit), yesNo(role.IsManaged)})
	}

	return view
}

func optionSetsView(optionSets []dataverse.OptionSet) tableView {
	view := tableView{
		headers: []string{"Name", "Display Name", "Type", "Options"},
		empty:   "No option sets found",
	}

	for _, optionSet := range optionSets {
		options := make([]string, 0, len(optionSet.Options))
		for _, option := range optionSet.Options {
			options = append(options, itoa(option.Value)+"="+option.Label)
		}

		view.rows = append(view.rows, []string{
			optionSet.Name,
			optionSet.DisplayName,
			optionSet.Type,
			orNotAvailable(strings.Join(options, ", ")),
		})
	}

	return view
}

func processesView(processes []dataverse.Process) tableView {
	view := tableView{
		headers: []string{"Name", "Category", "Primary Entity", "State", "Mode", "Managed"},
		empty:   "No processes found",
	}

	for _, process := range processes {
		view.rows = append(view.rows, []string{
			process.Name,
			process.Category,
			orNotAvailable(process.PrimaryEntity),
			process.State,
			orNotAvailable(process.Mode),
			yesNo(process.IsManaged),
		})
	}

	return view
}

func cloudFlowsView(flows []dataverse.CloudFlow) tableView {
	view := tableView{
		headers: []string{"Name", "State", "Triggers", "Actions", "Connectors", "Modified"},
		empty:   "No cloud flows found",
	}

	for _, flow := range flows {
		triggers, actions, connectors := constants.NotAvailable, constants.NotAvailable, constants.NotAvailable
		if flow.Definition != nil {
			triggers = orNotAvailable(strings.Join(flow.Definition.Triggers, ", "))
			actions = itoa(flow.Definition.ActionCount)
			connectors = orNotAvailable(strings.Join(flow.Definition.Connectors, ", "))
		}

		modified := constants.NotAvailable
		if flow.ModifiedOn != nil {
			modified = flow.ModifiedOn.UTC().Format(time.DateOnly)
		}

		view.rows = append(view.rows, []string{flow.Name, flow.State, triggers, actions, connectors, modified})
	}

	return view
}

func relationshipsView(graph *dataverse.EntityGraph) tableView {
	view := tableView{
		headers: []string{"Schema Name", "Kind", "From", "To", "Via"},
		empty:   "No relationships found",
	}

	for _, relationship := range graph.Relationships {
		via := relationship.ReferencingAttribute
		if relationship.Kind == dataverse.RelationshipManyToMany {
			via = relationship.IntersectEntity
		}

		view.rows = append(view.rows, []string{
			relationship.SchemaName,
			string(relationship.Kind),
			relationship.FromEntity,
			relationship.ToEntity,
			orNotAvailable(via),
		})
	}

	return view
}
