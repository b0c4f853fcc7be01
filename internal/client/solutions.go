package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/google/uuid"
)

// page is the collection envelope of the Web API. Only the first page is
// read.
type page[T any] struct {
	Value []T `json:"value"`
}

type solutionRow struct {
	SolutionID   uuid.UUID `json:"solutionid"`
	UniqueName   string    `json:"uniquename"`
	FriendlyName string    `json:"friendlyname"`
	Version      string    `json:"version"`
	IsManaged    bool      `json:"ismanaged"`
	Publisher    *struct {
		FriendlyName string `json:"friendlyname"`
	} `json:"publisherid"`
}

type componentRow struct {
	ObjectID string `json:"objectid"`
}

// SolutionsClient implements dataverse.SolutionsClient and the membership
// join shared by every reader.
type SolutionsClient struct {
	httpClient *http.Client
}

// NewSolutionsClient creates a new solutions client.
func NewSolutionsClient(httpClient *http.Client) *SolutionsClient {
	return &SolutionsClient{httpClient: httpClient}
}

// Get implements dataverse.SolutionsClient.Get.
func (c *SolutionsClient) Get(ctx context.Context, uniqueName string) (*dataverse.Solution, error) {
	uniqueName = strings.TrimSpace(uniqueName)
	if uniqueName == "" {
		return nil, fmt.Errorf("%w: solution name is required", dataverse.ErrInvalidArgument)
	}

	var rows page[solutionRow]

	err := c.httpClient.Execute(ctx, dataverse.SolutionByUniqueNameQuery(uniqueName), &rows)
	if err != nil {
		return nil, fmt.Errorf("resolving solution %s: %w", uniqueName, err)
	}

	if len(rows.Value) == 0 {
		return nil, &dataverse.NotFoundError{Kind: "solution", Name: uniqueName}
	}

	row := rows.Value[0]
	solution := &dataverse.Solution{
		ID:           row.SolutionID,
		UniqueName:   row.UniqueName,
		FriendlyName: row.FriendlyName,
		Version:      row.Version,
		IsManaged:    row.IsManaged,
	}

	if row.Publisher != nil {
		solution.Publisher = row.Publisher.FriendlyName
	}

	return solution, nil
}

// Members returns the object ids of one component type in a solution.
func (c *SolutionsClient) Members(ctx context.Context, solutionID uuid.UUID, componentType dataverse.ComponentType) (dataverse.ComponentSet, error) {
	var rows page[componentRow]

	err := c.httpClient.Execute(ctx, dataverse.SolutionComponentsQuery(solutionID, componentType), &rows)
	if err != nil {
		return nil, fmt.Errorf("listing solution components of type %d: %w", componentType, err)
	}

	members := dataverse.NewComponentSet()
	for _, row := range rows.Value {
		members.Add(row.ObjectID)
	}

	return members, nil
}

// componentReader describes one solution-scoped read: which component type
// to join on, which collection holds the details and how a detail row maps
// to a record.
type componentReader[R, T any] struct {
	kind          string
	componentType dataverse.ComponentType
	query         string
	id            func(R) string
	mapRow        func(R) T
}

// readSolutionComponents resolves the solution, collects its members of the
// reader's component type, reads the full detail collection and keeps the
// member rows in detail order. An empty membership skips the detail query.
func readSolutionComponents[R, T any](
	ctx context.Context,
	httpClient *http.Client,
	solutions *SolutionsClient,
	solutionName string,
	reader componentReader[R, T],
) ([]T, error) {
	solution, err := solutions.Get(ctx, solutionName)
	if err != nil {
		return nil, err
	}

	members, err := solutions.Members(ctx, solution.ID, reader.componentType)
	if err != nil {
		return nil, err
	}

	if members.Len() == 0 {
		return []T{}, nil
	}

	var rows page[R]

	err = httpClient.Execute(ctx, reader.query, &rows)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", reader.kind, err)
	}

	kept := dataverse.Intersect(rows.Value, members, reader.id)

	records := make([]T, 0, len(kept))
	for _, row := range kept {
		records = append(records, reader.mapRow(row))
	}

	return records, nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
