package client_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entityPath(logicalName string) string {
	return "EntityDefinitions(LogicalName='" + logicalName + "')"
}

func oneToMany(schema, referenced, referencing, attribute string) map[string]string {
	return map[string]string{
		"SchemaName":           schema,
		"ReferencedEntity":     referenced,
		"ReferencingEntity":    referencing,
		"ReferencingAttribute": attribute,
	}
}

func manyToMany(schema, entity1, entity2, intersect string) map[string]string {
	return map[string]string{
		"SchemaName":          schema,
		"Entity1LogicalName":  entity1,
		"Entity2LogicalName":  entity2,
		"IntersectEntityName": intersect,
	}
}

func entityMetadata(logicalName string, oneToManyRows, manyToOneRows, manyToManyRows []map[string]string) map[string]interface{} {
	if oneToManyRows == nil {
		oneToManyRows = []map[string]string{}
	}

	if manyToOneRows == nil {
		manyToOneRows = []map[string]string{}
	}

	if manyToManyRows == nil {
		manyToManyRows = []map[string]string{}
	}

	return map[string]interface{}{
		"LogicalName":             logicalName,
		"SchemaName":              logicalName,
		"MetadataId":              "00000000-0000-0000-0000-000000000001",
		"OneToManyRelationships":  oneToManyRows,
		"ManyToOneRelationships":  manyToOneRows,
		"ManyToManyRelationships": manyToManyRows,
	}
}

// crmModel is a small account/contact/tag/note model in which every
// relationship is visible from both of its ends.
func crmModel() map[string]interface{} {
	accountContacts := oneToMany("account_contacts", "account", "contact", "parentcustomerid")
	primaryContact := oneToMany("account_primary_contact", "contact", "account", "primarycontactid")
	contactNotes := oneToMany("contact_notes", "contact", "annotation", "objectid")

	return map[string]interface{}{
		entityPath("account"): entityMetadata("account",
			[]map[string]string{accountContacts},
			[]map[string]string{primaryContact},
			[]map[string]string{manyToMany("account_tags", "account", "contoso_tag", "account_tags")}),
		entityPath("contact"): entityMetadata("contact",
			[]map[string]string{primaryContact, contactNotes},
			[]map[string]string{accountContacts},
			nil),
		entityPath("contoso_tag"): entityMetadata("contoso_tag", nil, nil,
			[]map[string]string{manyToMany("account_tags", "contoso_tag", "account", "account_tags")}),
		entityPath("annotation"): entityMetadata("annotation", nil,
			[]map[string]string{contactNotes}, nil),
	}
}

func relationshipNames(graph *dataverse.EntityGraph) []string {
	names := make([]string, 0, len(graph.Relationships))
	for _, relationship := range graph.Relationships {
		names = append(names, relationship.SchemaName)
	}

	return names
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestEntityRelationshipsClient_Read(t *testing.T) {
	t.Parallel()

	t.Run("depth zero reads only the roots", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDataverse(t, crmModel())

		graph, err := fake.client().EntityRelationships().Read(context.Background(), []string{"Account "}, 0)
		require.NoError(t, err)

		assert.Equal(t, []string{"account"}, graph.Entities)
		assert.Equal(t, []string{"account_contacts", "account_primary_contact", "account_tags"}, relationshipNames(graph))
		assert.Equal(t, 1, fake.totalCalls())
	})

	t.Run("requests the relationship expansions", func(t *testing.T) {
		t.Parallel()

		model := crmModel()
		body := model[entityPath("account")]
		model[entityPath("account")] = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "LogicalName,SchemaName,MetadataId", request.URL.Query().Get("$select"))
			assert.Contains(t, request.URL.Query().Get("$expand"), "ManyToManyRelationships($select=")
			assert.Contains(t, request.URL.Query().Get("$expand"), "OneToManyRelationships($select=")
			assert.Contains(t, request.URL.Query().Get("$expand"), "ManyToOneRelationships($select=")

			writeJSON(t, writer, body)
		})

		fake := newFakeDataverse(t, model)

		_, err := fake.client().EntityRelationships().Read(context.Background(), []string{"account"}, 0)
		require.NoError(t, err)
	})

	t.Run("depth one follows neighbours and deduplicates", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDataverse(t, crmModel())

		graph, err := fake.client().EntityRelationships().Read(context.Background(), []string{"account"}, 1)
		require.NoError(t, err)

		assert.Equal(t, []string{"account", "contact", "contoso_tag"}, graph.Entities)
		assert.Equal(t,
			[]string{"account_contacts", "account_primary_contact", "account_tags", "contact_notes"},
			relationshipNames(graph))
		assert.Equal(t, 1, fake.callCount(entityPath("account")))
		assert.Equal(t, 1, fake.callCount(entityPath("contact")))
		assert.Equal(t, 1, fake.callCount(entityPath("contoso_tag")))
		assert.Equal(t, 0, fake.callCount(entityPath("annotation")))

		assert.Equal(t, dataverse.EntityRelationship{
			SchemaName:           "account_primary_contact",
			Kind:                 dataverse.RelationshipOneToMany,
			FromEntity:           "contact",
			ToEntity:             "account",
			ReferencingAttribute: "primarycontactid",
		}, graph.Relationships[1])
		assert.Equal(t, "account_tags", graph.Relationships[2].IntersectEntity)
	})

	t.Run("depth two reaches the leaves", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDataverse(t, crmModel())

		graph, err := fake.client().EntityRelationships().Read(context.Background(), []string{"account", "contact"}, 2)
		require.NoError(t, err)

		assert.Equal(t, []string{"account", "contact", "contoso_tag", "annotation"}, graph.Entities)
		assert.Len(t, graph.Relationships, 4)
		assert.Equal(t, 4, fake.totalCalls())
	})

	t.Run("unknown entity", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDataverse(t, crmModel())

		_, err := fake.client().EntityRelationships().Read(context.Background(), []string{"nope"}, 1)
		require.Error(t, err)
		assert.True(t, dataverse.IsNotFound(err))
		assert.Contains(t, err.Error(), "reading metadata of entity nope")
	})

	t.Run("invalid arguments", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			roots []string
			depth int
		}{
			{name: "no roots", roots: nil, depth: 1},
			{name: "blank roots", roots: []string{" ", ""}, depth: 1},
			{name: "negative depth", roots: []string{"account"}, depth: -1},
			{name: "depth above the limit", roots: []string{"account"}, depth: 6},
		}

		for _, tt := range tests {
			fake := newFakeDataverse(t, crmModel())

			_, err := fake.client().EntityRelationships().Read(context.Background(), tt.roots, tt.depth)
			require.ErrorIs(t, err, dataverse.ErrInvalidArgument, tt.name)
			assert.Equal(t, 0, fake.totalCalls(), tt.name)
		}
	})
}

func TestEntityRelationshipsClient_SolutionEntities(t *testing.T) {
	t.Parallel()

	fake := newFakeDataverse(t, map[string]interface{}{
		"solutions":          collection(solutionRow()),
		"solutioncomponents": members(t, 1, idA, idC),
		"EntityDefinitions": collection(
			map[string]string{"MetadataId": idA, "LogicalName": "account"},
			map[string]string{"MetadataId": idB, "LogicalName": "systemuser"},
			map[string]string{"MetadataId": idC, "LogicalName": "contoso_tag"},
		),
	})

	entities, err := fake.client().EntityRelationships().SolutionEntities(context.Background(), testSolutionName)
	require.NoError(t, err)
	assert.Equal(t, []string{"account", "contoso_tag"}, entities)
}
