package client

import (
	"context"

	"github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
)

// label is a metadata Label; UserLocalizedLabel is null when the label was
// never translated into the caller's language.
type label struct {
	UserLocalizedLabel *struct {
		Label string `json:"Label"`
	} `json:"UserLocalizedLabel"`
}

func (l *label) text() string {
	if l == nil || l.UserLocalizedLabel == nil {
		return ""
	}

	return l.UserLocalizedLabel.Label
}

type optionRow struct {
	Value int    `json:"Value"`
	Label *label `json:"Label"`
}

type optionSetRow struct {
	MetadataID    string      `json:"MetadataId"`
	Name          string      `json:"Name"`
	DisplayName   *label      `json:"DisplayName"`
	Description   *label      `json:"Description"`
	OptionSetType string      `json:"OptionSetType"`
	IsGlobal      bool        `json:"IsGlobal"`
	IsManaged     bool        `json:"IsManaged"`
	Options       []optionRow `json:"Options"`
	FalseOption   *optionRow  `json:"FalseOption"`
	TrueOption    *optionRow  `json:"TrueOption"`
}

// OptionSetsClient implements dataverse.OptionSetsClient.
type OptionSetsClient struct {
	httpClient *http.Client
	solutions  *SolutionsClient
}

// NewOptionSetsClient creates a new option sets client.
func NewOptionSetsClient(httpClient *http.Client, solutions *SolutionsClient) *OptionSetsClient {
	return &OptionSetsClient{httpClient: httpClient, solutions: solutions}
}

// List implements dataverse.OptionSetsClient.List.
func (c *OptionSetsClient) List(ctx context.Context, solution string) ([]dataverse.OptionSet, error) {
	return readSolutionComponents(ctx, c.httpClient, c.solutions, solution,
		componentReader[optionSetRow, dataverse.OptionSet]{
			kind:          "option sets",
			componentType: dataverse.ComponentTypeOptionSet,
			query:         dataverse.GlobalOptionSetsQuery(),
			id:            func(row optionSetRow) string { return row.MetadataID },
			mapRow:        mapOptionSet,
		})
}

func mapOptionSet(row optionSetRow) dataverse.OptionSet {
	optionSet := dataverse.OptionSet{
		ID:          row.MetadataID,
		Name:        row.Name,
		DisplayName: row.DisplayName.text(),
		Description: row.Description.text(),
		Type:        row.OptionSetType,
		IsGlobal:    row.IsGlobal,
		IsManaged:   row.IsManaged,
		Options:     []dataverse.OptionValue{},
	}

	if optionSet.Type == "" {
		optionSet.Type = dataverse.Unknown
	}

	options := row.Options

	// Boolean option sets carry their two choices outside Options.
	if len(options) == 0 {
		for _, option := range []*optionRow{row.FalseOption, row.TrueOption} {
			if option != nil {
				options = append(options, *option)
			}
		}
	}

	for _, option := range options {
		optionSet.Options = append(optionSet.Options, dataverse.OptionValue{
			Value: option.Value,
			Label: option.Label.text(),
		})
	}

	return optionSet
}
