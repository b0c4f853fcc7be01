package commands

import (
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the dvdoc CLI",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			type VersionInfo struct {
				Version string `json:"version" yaml:"version"`
				Commit  string `json:"commit"  yaml:"commit"`
				Built   string `json:"built"   yaml:"built"`
			}

			info := VersionInfo{
				Version: app.info.Version,
				Commit:  app.info.Commit,
				Built:   app.info.Date,
			}

			return app.render(info, tableView{
				headers: []string{"Property", "Value"},
				rows: [][]string{
					{"Version", info.Version},
					{"Commit", info.Commit},
					{"Built", info.Built},
				},
			})
		},
	}
}
