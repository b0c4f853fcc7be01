package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
)

type oneToManyRow struct {
	SchemaName           string `json:"SchemaName"`
	ReferencedEntity     string `json:"ReferencedEntity"`
	ReferencingEntity    string `json:"ReferencingEntity"`
	ReferencingAttribute string `json:"ReferencingAttribute"`
}

type manyToManyRow struct {
	SchemaName          string `json:"SchemaName"`
	Entity1LogicalName  string `json:"Entity1LogicalName"`
	Entity2LogicalName  string `json:"Entity2LogicalName"`
	IntersectEntityName string `json:"IntersectEntityName"`
}

type entityMetadataRow struct {
	LogicalName             string          `json:"LogicalName"`
	SchemaName              string          `json:"SchemaName"`
	MetadataID              string          `json:"MetadataId"`
	OneToManyRelationships  []oneToManyRow  `json:"OneToManyRelationships"`
	ManyToOneRelationships  []oneToManyRow  `json:"ManyToOneRelationships"`
	ManyToManyRelationships []manyToManyRow `json:"ManyToManyRelationships"`
}

// relationships flattens the three relationship collections. Many-to-one
// rows are the one-to-many relationships of the other entity and map to the
// same referenced -> referencing edge.
func (r *entityMetadataRow) relationships() []dataverse.EntityRelationship {
	edges := make([]dataverse.EntityRelationship, 0,
		len(r.OneToManyRelationships)+len(r.ManyToOneRelationships)+len(r.ManyToManyRelationships))

	for _, rows := range [][]oneToManyRow{r.OneToManyRelationships, r.ManyToOneRelationships} {
		for _, row := range rows {
			edges = append(edges, dataverse.EntityRelationship{
				SchemaName:           row.SchemaName,
				Kind:                 dataverse.RelationshipOneToMany,
				FromEntity:           strings.ToLower(row.ReferencedEntity),
				ToEntity:             strings.ToLower(row.ReferencingEntity),
				ReferencingAttribute: row.ReferencingAttribute,
			})
		}
	}

	for _, row := range r.ManyToManyRelationships {
		edges = append(edges, dataverse.EntityRelationship{
			SchemaName:      row.SchemaName,
			Kind:            dataverse.RelationshipManyToMany,
			FromEntity:      strings.ToLower(row.Entity1LogicalName),
			ToEntity:        strings.ToLower(row.Entity2LogicalName),
			IntersectEntity: row.IntersectEntityName,
		})
	}

	return edges
}

// EntityRelationshipsClient implements dataverse.EntityRelationshipsClient.
type EntityRelationshipsClient struct {
	httpClient *http.Client
	solutions  *SolutionsClient
}

// NewEntityRelationshipsClient creates a new entity relationships client.
func NewEntityRelationshipsClient(httpClient *http.Client, solutions *SolutionsClient) *EntityRelationshipsClient {
	return &EntityRelationshipsClient{httpClient: httpClient, solutions: solutions}
}

// Read implements dataverse.EntityRelationshipsClient.Read. Entities are
// visited breadth first, each at most once; a relationship seen from both
// of its ends is emitted once.
func (c *EntityRelationshipsClient) Read(ctx context.Context, roots []string, depth int) (*dataverse.EntityGraph, error) {
	if depth < 0 || depth > constants.MaxDiagramDepth {
		return nil, fmt.Errorf("%w: %w: %d is not between 0 and %d",
			dataverse.ErrInvalidArgument, constants.ErrInvalidDepth, depth, constants.MaxDiagramDepth)
	}

	frontier := make([]string, 0, len(roots))
	visited := make(map[string]bool)

	for _, root := range roots {
		name := strings.ToLower(strings.TrimSpace(root))
		if name == "" || visited[name] {
			continue
		}

		visited[name] = true
		frontier = append(frontier, name)
	}

	if len(frontier) == 0 {
		return nil, fmt.Errorf("%w: at least one entity is required", dataverse.ErrInvalidArgument)
	}

	graph := &dataverse.EntityGraph{
		Entities:      []string{},
		Relationships: []dataverse.EntityRelationship{},
	}
	seen := make(map[string]bool)

	for level := 0; len(frontier) > 0; level++ {
		var next []string

		for _, entity := range frontier {
			row, err := c.entity(ctx, entity)
			if err != nil {
				return nil, err
			}

			graph.Entities = append(graph.Entities, entity)

			for _, edge := range row.relationships() {
				if edge.FromEntity == "" || edge.ToEntity == "" {
					continue
				}

				key := edge.Key()
				if !seen[key] {
					seen[key] = true
					graph.Relationships = append(graph.Relationships, edge)
				}

				if level >= depth {
					continue
				}

				for _, neighbour := range []string{edge.FromEntity, edge.ToEntity} {
					if !visited[neighbour] {
						visited[neighbour] = true
						next = append(next, neighbour)
					}
				}
			}
		}

		frontier = next
	}

	return graph, nil
}

func (c *EntityRelationshipsClient) entity(ctx context.Context, logicalName string) (*entityMetadataRow, error) {
	var row entityMetadataRow

	err := c.httpClient.Execute(ctx, dataverse.EntityMetadataQuery(logicalName, true), &row)
	if err != nil {
		return nil, fmt.Errorf("reading metadata of entity %s: %w", logicalName, err)
	}

	return &row, nil
}

type entityDefinitionRow struct {
	LogicalName string `json:"LogicalName"`
	MetadataID  string `json:"MetadataId"`
}

// SolutionEntities implements dataverse.EntityRelationshipsClient.SolutionEntities.
func (c *EntityRelationshipsClient) SolutionEntities(ctx context.Context, solution string) ([]string, error) {
	return readSolutionComponents(ctx, c.httpClient, c.solutions, solution,
		componentReader[entityDefinitionRow, string]{
			kind:          "entities",
			componentType: dataverse.ComponentTypeEntity,
			query:         dataverse.EntityDefinitionsQuery(),
			id:            func(row entityDefinitionRow) string { return row.MetadataID },
			mapRow:        func(row entityDefinitionRow) string { return row.LogicalName },
		})
}
