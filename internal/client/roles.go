package client

import (
	"context"

	"github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
)

type roleRow struct {
	ID           string `json:"roleid"`
	Name         string `json:"name"`
	IsManaged    bool   `json:"ismanaged"`
	BusinessUnit *struct {
		Name string `json:"name"`
	} `json:"businessunitid"`
}

// SecurityRolesClient implements dataverse.SecurityRolesClient.
type SecurityRolesClient struct {
	httpClient *http.Client
	solutions  *SolutionsClient
}

// NewSecurityRolesClient creates a new security roles client.
func NewSecurityRolesClient(httpClient *http.Client, solutions *SolutionsClient) *SecurityRolesClient {
	return &SecurityRolesClient{httpClient: httpClient, solutions: solutions}
}

// List implements dataverse.SecurityRolesClient.List.
func (c *SecurityRolesClient) List(ctx context.Context, solution string) ([]dataverse.SecurityRole, error) {
	return readSolutionComponents(ctx, c.httpClient, c.solutions, solution,
		componentReader[roleRow, dataverse.SecurityRole]{
			kind:          "security roles",
			componentType: dataverse.ComponentTypeRole,
			query:         dataverse.RolesQuery(),
			id:            func(row roleRow) string { return row.ID },
			mapRow:        mapSecurityRole,
		})
}

func mapSecurityRole(row roleRow) dataverse.SecurityRole {
	role := dataverse.SecurityRole{
		ID:        row.ID,
		Name:      row.Name,
		IsManaged: row.IsManaged,
	}

	if row.BusinessUnit != nil {
		role.BusinessUnit = row.BusinessUnit.Name
	}

	return role
}
