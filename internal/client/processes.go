package client

import (
	"context"
	"time"

	"github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
)

type workflowRow struct {
	ID            string     `json:"workflowid"`
	Name          string     `json:"name"`
	Category      *int       `json:"category"`
	PrimaryEntity *string    `json:"primaryentity"`
	StateCode     *int       `json:"statecode"`
	Mode          *int       `json:"mode"`
	Description   *string    `json:"description"`
	IsManaged     bool       `json:"ismanaged"`
	ModifiedOn    *time.Time `json:"modifiedon"`
	ClientData    *string    `json:"clientdata"`
}

func workflowID(row workflowRow) string {
	return row.ID
}

// ProcessesClient implements dataverse.ProcessesClient. Modern flows are
// excluded; they are read by CloudFlowsClient.
type ProcessesClient struct {
	httpClient *http.Client
	solutions  *SolutionsClient
}

// NewProcessesClient creates a new processes client.
func NewProcessesClient(httpClient *http.Client, solutions *SolutionsClient) *ProcessesClient {
	return &ProcessesClient{httpClient: httpClient, solutions: solutions}
}

// List implements dataverse.ProcessesClient.List.
func (c *ProcessesClient) List(ctx context.Context, solution string) ([]dataverse.Process, error) {
	return readSolutionComponents(ctx, c.httpClient, c.solutions, solution,
		componentReader[workflowRow, dataverse.Process]{
			kind:          "processes",
			componentType: dataverse.ComponentTypeWorkflow,
			query:         dataverse.WorkflowsByCategoryQuery(dataverse.ProcessCategories...),
			id:            workflowID,
			mapRow:        mapProcess,
		})
}

func mapProcess(row workflowRow) dataverse.Process {
	return dataverse.Process{
		ID:            row.ID,
		Name:          row.Name,
		Category:      dataverse.WorkflowCategoryLabel(row.Category),
		PrimaryEntity: stringValue(row.PrimaryEntity),
		State:         dataverse.WorkflowStateLabel(row.StateCode),
		Mode:          dataverse.WorkflowModeLabel(row.Mode),
		Description:   stringValue(row.Description),
		IsManaged:     row.IsManaged,
	}
}
