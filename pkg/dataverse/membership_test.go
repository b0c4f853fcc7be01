package dataverse_test

import (
	"testing"

	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/stretchr/testify/assert"
)

type row struct {
	id   string
	name string
}

func rowID(r row) string { return r.id }

func TestComponentSet(t *testing.T) {
	t.Parallel()

	set := dataverse.NewComponentSet("{6F1C2D55-7A0E-4F2B-9A51-2C1D3E4F5A6B}", "", "abc")

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("6f1c2d55-7a0e-4f2b-9a51-2c1d3e4f5a6b"))
	assert.True(t, set.Contains("ABC"))
	assert.False(t, set.Contains(""))
}

func TestIntersect(t *testing.T) {
	t.Parallel()

	rows := []row{{"A", "alpha"}, {"b", "beta"}, {"C", "gamma"}}

	t.Run("keeps members in detail order", func(t *testing.T) {
		t.Parallel()

		got := dataverse.Intersect(rows, dataverse.NewComponentSet("B", "a"), rowID)
		assert.Equal(t, []row{{"A", "alpha"}, {"b", "beta"}}, got)
	})

	t.Run("empty membership", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, dataverse.Intersect(rows, dataverse.NewComponentSet(), rowID))
	})

	t.Run("no rows", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, dataverse.Intersect(nil, dataverse.NewComponentSet("a"), rowID))
	})

	t.Run("members missing from detail", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, dataverse.Intersect(rows, dataverse.NewComponentSet("z"), rowID))
	})
}

func TestEntityRelationship_Key(t *testing.T) {
	t.Parallel()

	a := dataverse.EntityRelationship{Kind: dataverse.RelationshipManyToMany, FromEntity: "contact", ToEntity: "account"}
	b := dataverse.EntityRelationship{Kind: dataverse.RelationshipManyToMany, FromEntity: "account", ToEntity: "contact"}
	assert.Equal(t, a.Key(), b.Key())

	c := dataverse.EntityRelationship{Kind: dataverse.RelationshipOneToMany, FromEntity: "account", ToEntity: "contact"}
	d := dataverse.EntityRelationship{Kind: dataverse.RelationshipOneToMany, FromEntity: "contact", ToEntity: "account"}
	assert.NotEqual(t, c.Key(), d.Key())
	assert.Equal(t, "OneToMany:account->contact", c.Key())
}
