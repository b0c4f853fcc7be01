package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// solutionDocument is everything the document command reads for a solution.
type solutionDocument struct {
	Solution             *dataverse.Solution             `json:"solution"              yaml:"solution"`
	EnvironmentVariables []dataverse.EnvironmentVariable `json:"environment_variables" yaml:"environment_variables"`
	Queues               []dataverse.Queue               `json:"queues"                yaml:"queues"`
	SecurityRoles        []dataverse.SecurityRole        `json:"security_roles"        yaml:"security_roles"`
	OptionSets           []dataverse.OptionSet           `json:"option_sets"           yaml:"option_sets"`
	Processes            []dataverse.Process             `json:"processes"             yaml:"processes"`
	CloudFlows           []dataverse.CloudFlow           `json:"cloud_flows"           yaml:"cloud_flows"`
	Entities             *dataverse.EntityGraph          `json:"entities,omitempty"    yaml:"entities,omitempty"`
	GeneratedAt          time.Time                       `json:"generated_at"          yaml:"generated_at"`
}

// NewDocumentCommand creates the document command.
func NewDocumentCommand(app *App) *cobra.Command {
	var (
		outputFile string
		depth      int
		noDiagram  bool
	)

	cmd := &cobra.Command{
		Use:     "document [SOLUTION]",
		Aliases: []string{"doc"},
		Short:   "Generate documentation for a solution",
		Long: `Run every metadata reader for a solution and emit a single Markdown
document with one section per component kind and an entity relationship
diagram. Use --output json or yaml for a machine readable document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.solutionName(args)
			if err != nil {
				return err
			}

			client, err := app.client(cmd.Context())
			if err != nil {
				return err
			}

			doc, err := readSolutionDocument(cmd.Context(), app.logger, client, name, depth, !noDiagram)
			if err != nil {
				return err
			}

			out := app.Out

			if outputFile != "" {
				file, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.ConfigFilePerm)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outputFile, err)
				}
				defer file.Close()

				out = file
			}

			if err := writeDocument(out, app.settings.Output, doc); err != nil {
				return err
			}

			if outputFile != "" {
				app.logger.Info("Wrote solution document", zap.String("path", outputFile))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "file", "f", "", "write the document to a file instead of stdout")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0,
		fmt.Sprintf("relationship hops to follow from the solution's tables (0-%d)", constants.MaxDiagramDepth))
	cmd.Flags().BoolVar(&noDiagram, "no-diagram", false, "skip the entity relationship diagram")

	return cmd
}

// readSolutionDocument runs the readers one after another. The solution is
// resolved once up front so that a missing solution fails before any
// component query.
func readSolutionDocument(
	ctx context.Context, logger *zap.Logger, client dataverse.Client, name string, depth int, diagram bool,
) (*solutionDocument, error) {
	solution, err := client.Solutions().Get(ctx, name)
	if err != nil {
		return nil, err
	}

	doc := &solutionDocument{Solution: solution, GeneratedAt: time.Now().UTC()}

	steps := []struct {
		kind string
		read func() (int, error)
	}{
		{"environment variables", func() (int, error) {
			doc.EnvironmentVariables, err = client.EnvironmentVariables().List(ctx, name)

			return len(doc.EnvironmentVariables), err
		}},
		{"queues", func() (int, error) {
			doc.Queues, err = client.Queues().List(ctx, name)

			return len(doc.Queues), err
		}},
		{"security roles", func() (int, error) {
			doc.SecurityRoles, err = client.SecurityRoles().List(ctx, name)

			return len(doc.SecurityRoles), err
		}},
		{"option sets", func() (int, error) {
			doc.OptionSets, err = client.OptionSets().List(ctx, name)

			return len(doc.OptionSets), err
		}},
		{"processes", func() (int, error) {
			doc.Processes, err = client.Processes().List(ctx, name)

			return len(doc.Processes), err
		}},
		{"cloud flows", func() (int, error) {
			doc.CloudFlows, err = client.CloudFlows().List(ctx, name)

			return len(doc.CloudFlows), err
		}},
	}

	for _, step := range steps {
		count, err := step.read()
		if err != nil {
			return nil, fmt.Errorf("documenting %s: %w", step.kind, err)
		}

		logger.Info("Read solution components",
			zap.String("solution", name), zap.String("kind", step.kind), zap.Int("count", count))
	}

	if !diagram {
		return doc, nil
	}

	roots, err := client.EntityRelationships().SolutionEntities(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("documenting entities: %w", err)
	}

	if len(roots) > 0 {
		doc.Entities, err = client.EntityRelationships().Read(ctx, roots, depth)
		if err != nil {
			return nil, fmt.Errorf("documenting entities: %w", err)
		}
	}

	return doc, nil
}

func writeDocument(w io.Writer, format string, doc *solutionDocument) error {
	switch format {
	case constants.FormatJSON:
		return writeJSON(w, doc)
	case constants.FormatYAML:
		return writeYAML(w, doc)
	case constants.FormatTable, constants.FormatMarkdown:
		return writeMarkdownDocument(w, doc)
	default:
		return unsupportedOutput(format)
	}
}

func writeMarkdownDocument(w io.Writer, doc *solutionDocument) error {
	var buf bytes.Buffer

	title := doc.Solution.FriendlyName
	if title == "" {
		title = doc.Solution.UniqueName
	}

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "_Generated %s_\n\n", doc.GeneratedAt.Format(time.RFC3339))

	sections := []struct {
		title string
		view  tableView
	}{
		{"Solution", solutionView(doc.Solution)},
		{"Environment Variables", environmentVariablesView(doc.EnvironmentVariables)},
		{"Queues", queuesView(doc.Queues)},
		{"Security Roles", securityRolesView(doc.SecurityRoles)},
		{"Option Sets", optionSetsView(doc.OptionSets)},
		{"Processes", processesView(doc.Processes)},
		{"Cloud Flows", cloudFlowsView(doc.CloudFlows)},
	}

	for _, section := range sections {
		fmt.Fprintf(&buf, "## %s\n\n", section.title)

		if err := writeTable(&buf, section.view, true); err != nil {
			return err
		}

		buf.WriteString("\n")
	}

	if doc.Entities != nil {
		buf.WriteString("## Entity Relationships\n\n")
		fmt.Fprintf(&buf, "```mermaid\n%s```\n\n", mermaidDiagram(doc.Entities))

		if err := writeTable(&buf, relationshipsView(doc.Entities), true); err != nil {
			return err
		}
	}

	_, err := w.Write(buf.Bytes())

	return err
}
