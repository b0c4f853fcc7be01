package client

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
)

// flowActions is a Logic Apps action map. Scopes, conditions and switches
// nest further maps under actions, else, cases and default.
type flowActions map[string]flowAction

type flowBranch struct {
	Actions flowActions `json:"actions"`
}

type flowAction struct {
	Actions flowActions           `json:"actions"`
	Else    *flowBranch           `json:"else"`
	Cases   map[string]flowBranch `json:"cases"`
	Default *flowBranch           `json:"default"`
}

func (a flowActions) count() int {
	total := len(a)

	for _, action := range a {
		total += action.Actions.count()

		if action.Else != nil {
			total += action.Else.Actions.count()
		}

		if action.Default != nil {
			total += action.Default.Actions.count()
		}

		for _, branch := range action.Cases {
			total += branch.Actions.count()
		}
	}

	return total
}

type flowClientData struct {
	Properties struct {
		ConnectionReferences map[string]struct {
			API struct {
				Name string `json:"name"`
			} `json:"api"`
		} `json:"connectionReferences"`
		Definition struct {
			Triggers map[string]json.RawMessage `json:"triggers"`
			Actions  flowActions                `json:"actions"`
		} `json:"definition"`
	} `json:"properties"`
}

// CloudFlowsClient implements dataverse.CloudFlowsClient.
type CloudFlowsClient struct {
	httpClient *http.Client
	solutions  *SolutionsClient
}

// NewCloudFlowsClient creates a new cloud flows client.
func NewCloudFlowsClient(httpClient *http.Client, solutions *SolutionsClient) *CloudFlowsClient {
	return &CloudFlowsClient{httpClient: httpClient, solutions: solutions}
}

// List implements dataverse.CloudFlowsClient.List.
func (c *CloudFlowsClient) List(ctx context.Context, solution string) ([]dataverse.CloudFlow, error) {
	return readSolutionComponents(ctx, c.httpClient, c.solutions, solution,
		componentReader[workflowRow, dataverse.CloudFlow]{
			kind:          "cloud flows",
			componentType: dataverse.ComponentTypeWorkflow,
			query:         dataverse.WorkflowsByCategoryQuery(dataverse.WorkflowCategoryModernFlow),
			id:            workflowID,
			mapRow:        mapCloudFlow,
		})
}

func mapCloudFlow(row workflowRow) dataverse.CloudFlow {
	return dataverse.CloudFlow{
		ID:          row.ID,
		Name:        row.Name,
		State:       dataverse.WorkflowStateLabel(row.StateCode),
		Description: stringValue(row.Description),
		IsManaged:   row.IsManaged,
		ModifiedOn:  row.ModifiedOn,
		Definition:  ParseFlowDefinition(stringValue(row.ClientData)),
	}
}

// ParseFlowDefinition summarises a flow's clientdata JSON. It returns nil
// when clientdata is empty or not a flow definition.
func ParseFlowDefinition(clientData string) *dataverse.FlowDefinition {
	if strings.TrimSpace(clientData) == "" {
		return nil
	}

	var data flowClientData

	err := json.Unmarshal([]byte(clientData), &data)
	if err != nil {
		return nil
	}

	properties := data.Properties
	if properties.Definition.Triggers == nil && properties.Definition.Actions == nil {
		return nil
	}

	connectors := make([]string, 0, len(properties.ConnectionReferences))

	for key, reference := range properties.ConnectionReferences {
		name := reference.API.Name
		if name == "" {
			name = key
		}

		connectors = append(connectors, name)
	}

	slices.Sort(connectors)

	triggers := slices.Sorted(maps.Keys(properties.Definition.Triggers))
	if triggers == nil {
		triggers = []string{}
	}

	return &dataverse.FlowDefinition{
		Triggers:    triggers,
		ActionCount: properties.Definition.Actions.count(),
		Connectors:  slices.Compact(connectors),
	}
}
