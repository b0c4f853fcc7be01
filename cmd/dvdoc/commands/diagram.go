package commands

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewDiagramCommand creates the diagram command.
func NewDiagramCommand(app *App) *cobra.Command {
	var (
		entities []string
		depth    int
	)

	cmd := &cobra.Command{
		Use:     "diagram [SOLUTION]",
		Aliases: []string{"erd"},
		Short:   "Draw an entity relationship diagram",
		Long: `Follow the relationships of the given entities, or of every table in a
solution, and print a Mermaid erDiagram. Use --output json or yaml for the
raw graph, table or markdown for a relationship list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client(cmd.Context())
			if err != nil {
				return err
			}

			roots := normalizeEntities(entities)
			if len(roots) == 0 {
				solution, err := app.solutionName(args)
				if err != nil {
					return err
				}

				roots, err = client.EntityRelationships().SolutionEntities(cmd.Context(), solution)
				if err != nil {
					return err
				}
			}

			if len(roots) == 0 {
				return fmt.Errorf("%w: %w", dataverse.ErrInvalidArgument, constants.ErrDiagramRootsRequired)
			}

			graph, err := client.EntityRelationships().Read(cmd.Context(), roots, depth)
			if err != nil {
				return err
			}

			app.logger.Info("Read entity relationships",
				zap.Strings("roots", roots), zap.Int("depth", depth),
				zap.Int("entities", len(graph.Entities)), zap.Int("relationships", len(graph.Relationships)))

			switch app.settings.Output {
			case constants.FormatTable, constants.FormatMermaid:
				_, err = fmt.Fprint(app.Out, mermaidDiagram(graph))

				return err
			case constants.FormatMarkdown:
				_, err = fmt.Fprintf(app.Out, "```mermaid\n%s```\n", mermaidDiagram(graph))

				return err
			default:
				return app.render(graph, relationshipsView(graph))
			}
		},
	}

	cmd.Flags().StringSliceVarP(&entities, "entity", "e", nil,
		"logical name of a root entity (repeatable; default every table of the solution)")
	cmd.Flags().IntVarP(&depth, "depth", "d", constants.DefaultDiagramDepth,
		fmt.Sprintf("relationship hops to follow from the roots (0-%d)", constants.MaxDiagramDepth))

	return cmd
}

func normalizeEntities(entities []string) []string {
	normalized := make([]string, 0, len(entities))

	for _, entity := range entities {
		if entity = strings.ToLower(strings.TrimSpace(entity)); entity != "" {
			normalized = append(normalized, entity)
		}
	}

	return normalized
}
