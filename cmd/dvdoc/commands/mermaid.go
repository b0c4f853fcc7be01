package commands

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
)

const mermaidIndent = "    "

// mermaidDiagram renders graph as a Mermaid erDiagram. Entities without any
// relationship are still declared so they appear in the picture.
func mermaidDiagram(graph *dataverse.EntityGraph) string {
	var buf strings.Builder

	buf.WriteString("erDiagram\n")

	connected := make(map[string]bool, len(graph.Entities))

	for _, relationship := range graph.Relationships {
		connected[relationship.FromEntity] = true
		connected[relationship.ToEntity] = true

		cardinality := "||--o{"
		if relationship.Kind == dataverse.RelationshipManyToMany {
			cardinality = "}o--o{"
		}

		buf.WriteString(fmt.Sprintf("%s%s %s %s : %q\n",
			mermaidIndent, relationship.FromEntity, cardinality, relationship.ToEntity, relationship.SchemaName))
	}

	for _, entity := range graph.Entities {
		if !connected[entity] {
			buf.WriteString(mermaidIndent + entity + "\n")
		}
	}

	return buf.String()
}
