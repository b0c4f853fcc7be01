package client

import (
	"context"

	"github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
)

type environmentVariableRow struct {
	ID           string  `json:"environmentvariabledefinitionid"`
	SchemaName   string  `json:"schemaname"`
	DisplayName  string  `json:"displayname"`
	Description  *string `json:"description"`
	Type         *int    `json:"type"`
	DefaultValue *string `json:"defaultvalue"`
	IsRequired   bool    `json:"isrequired"`
	Values       []struct {
		Value *string `json:"value"`
	} `json:"environmentvariabledefinition_environmentvariablevalue"`
}

// EnvironmentVariablesClient implements dataverse.EnvironmentVariablesClient.
type EnvironmentVariablesClient struct {
	httpClient *http.Client
	solutions  *SolutionsClient
}

// NewEnvironmentVariablesClient creates a new environment variables client.
func NewEnvironmentVariablesClient(httpClient *http.Client, solutions *SolutionsClient) *EnvironmentVariablesClient {
	return &EnvironmentVariablesClient{httpClient: httpClient, solutions: solutions}
}

// List implements dataverse.EnvironmentVariablesClient.List.
func (c *EnvironmentVariablesClient) List(ctx context.Context, solution string) ([]dataverse.EnvironmentVariable, error) {
	return readSolutionComponents(ctx, c.httpClient, c.solutions, solution,
		componentReader[environmentVariableRow, dataverse.EnvironmentVariable]{
			kind:          "environment variables",
			componentType: dataverse.ComponentTypeEnvironmentVariableDefinition,
			query:         dataverse.EnvironmentVariableDefinitionsQuery(),
			id:            func(row environmentVariableRow) string { return row.ID },
			mapRow:        mapEnvironmentVariable,
		})
}

func mapEnvironmentVariable(row environmentVariableRow) dataverse.EnvironmentVariable {
	variable := dataverse.EnvironmentVariable{
		ID:           row.ID,
		SchemaName:   row.SchemaName,
		DisplayName:  row.DisplayName,
		Description:  stringValue(row.Description),
		Type:         dataverse.EnvironmentVariableTypeLabel(row.Type),
		DefaultValue: stringValue(row.DefaultValue),
		IsRequired:   row.IsRequired,
	}

	// A definition has at most one value row in an environment.
	if len(row.Values) > 0 {
		variable.CurrentValue = stringValue(row.Values[0].Value)
	}

	return variable
}
