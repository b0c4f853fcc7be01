package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/dvdoc/internal/config"
	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"gopkg.in/yaml.v3"
)

// tableView is the tabular form of a command result.
type tableView struct {
	headers []string
	rows    [][]string
	empty   string
}

// render writes value in the configured format. Table and markdown use view.
func (a *App) render(value interface{}, view tableView) error {
	switch a.settings.Output {
	case constants.FormatJSON:
		return writeJSON(a.Out, value)
	case constants.FormatYAML:
		return writeYAML(a.Out, value)
	case constants.FormatMarkdown:
		return writeTable(a.Out, view, true)
	case constants.FormatTable:
		return writeTable(a.Out, view, false)
	default:
		return unsupportedOutput(a.settings.Output)
	}
}

func unsupportedOutput(format string) error {
	return &dataverse.ConfigurationError{Field: config.KeyOutput, Message: format, Err: constants.ErrInvalidOutputFormat}
}

func writeJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func writeYAML(w io.Writer, value interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(constants.JSONIndentSize)

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}

func writeTable(w io.Writer, view tableView, markdown bool) error {
	if len(view.rows) == 0 && view.empty != "" {
		_, err := fmt.Fprintln(w, view.empty)

		return err
	}

	var table *tablewriter.Table
	if markdown {
		table = tablewriter.NewTable(w, tablewriter.WithRenderer(renderer.NewMarkdown()))
	} else {
		table = tablewriter.NewWriter(w)
	}

	headers := make([]interface{}, len(view.headers))
	for i, header := range view.headers {
		headers[i] = header
	}

	table.Header(headers...)

	for _, row := range view.rows {
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			if markdown {
				cell = escapeMarkdown(cell)
			}

			cells[i] = cell
		}

		if err := table.Append(cells...); err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func escapeMarkdown(cell string) string {
	cell = strings.ReplaceAll(cell, "|", `\|`)

	return strings.Join(strings.Fields(cell), " ")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}

func orNotAvailable(value string) string {
	if strings.TrimSpace(value) == "" {
		return constants.NotAvailable
	}

	return value
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}

	return string(runes[:limit-3]) + "..."
}

func itoa(value int) string {
	return strconv.Itoa(value)
}
