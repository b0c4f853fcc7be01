package client

import (
	"context"

	"github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
)

type queueRow struct {
	ID           string  `json:"queueid"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	TypeCode     *int    `json:"queuetypecode"`
	EmailAddress *string `json:"emailaddress"`
}

// QueuesClient implements dataverse.QueuesClient.
type QueuesClient struct {
	httpClient *http.Client
	solutions  *SolutionsClient
}

// NewQueuesClient creates a new queues client.
func NewQueuesClient(httpClient *http.Client, solutions *SolutionsClient) *QueuesClient {
	return &QueuesClient{httpClient: httpClient, solutions: solutions}
}

// List implements dataverse.QueuesClient.List.
func (c *QueuesClient) List(ctx context.Context, solution string) ([]dataverse.Queue, error) {
	return readSolutionComponents(ctx, c.httpClient, c.solutions, solution,
		componentReader[queueRow, dataverse.Queue]{
			kind:          "queues",
			componentType: dataverse.ComponentTypeQueue,
			query:         dataverse.QueuesQuery(),
			id:            func(row queueRow) string { return row.ID },
			mapRow:        mapQueue,
		})
}

func mapQueue(row queueRow) dataverse.Queue {
	email := stringValue(row.EmailAddress)

	return dataverse.Queue{
		ID:           row.ID,
		Name:         row.Name,
		Description:  stringValue(row.Description),
		Type:         dataverse.QueueTypeLabel(row.TypeCode),
		EmailAddress: email,
		EmailEnabled: email != "",
	}
}
