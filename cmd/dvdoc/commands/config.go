package commands

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/fivetwenty-io/dvdoc/internal/config"
	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show the effective configuration and edit the configuration file",
	}

	cmd.AddCommand(newConfigShowCommand(app))
	cmd.AddCommand(newConfigSetCommand(app))
	cmd.AddCommand(newConfigUnsetCommand(app))

	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the configuration after merging flags, DVDOC_* variables and the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			settings := app.settings
			values := map[string]string{
				config.KeyURL:                 settings.Connection.URL,
				config.KeyAuthMode:            string(settings.Connection.AuthMode),
				config.KeyTenantID:            settings.Connection.TenantID,
				config.KeyClientID:            settings.Connection.ClientID,
				config.KeyClientSecret:        settings.Connection.ClientSecret,
				config.KeyCertificatePath:     settings.Connection.CertificatePath,
				config.KeyCertificatePassword: settings.Connection.CertificatePassword,
				config.KeyAuthority:           settings.Connection.AuthorityURL(),
				config.KeyToken:               settings.AccessToken,
				config.KeyCallerID:            settings.CallerID,
				config.KeySolution:            settings.Solution,
				config.KeyOutput:              settings.Output,
				config.KeyVerbose:             strconv.FormatBool(settings.Verbose),
				config.KeyNoColor:             strconv.FormatBool(settings.NoColor),
				config.KeyRetries:             strconv.Itoa(settings.RetryMax),
				config.KeyTimeout:             settings.HTTPTimeout.String(),
			}

			view := tableView{headers: []string{"Key", "Value"}}
			shown := make(map[string]string, len(values))

			for _, key := range config.Keys() {
				value := values[key]
				if config.IsSecret(key) && value != "" {
					value = constants.MaskedSecret
				}

				shown[key] = value
				view.rows = append(view.rows, []string{key, orNotAvailable(value)})
			}

			if settings.ConfigFile != "" {
				view.rows = append(view.rows, []string{"config_file", settings.ConfigFile})
				shown["config_file"] = settings.ConfigFile
			}

			return app.render(shown, view)
		},
	}
}

func newConfigSetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "set KEY VALUE",
		Short:       "Set a configuration value",
		Long:        "Write a value to the configuration file (default $HOME/.dvdoc/config.yml)",
		Args:        cobra.ExactArgs(2), //nolint:mnd // key and value
		Annotations: map[string]string{skipSettingsAnnotation: constants.BooleanTrue},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath(cmd)
			if err != nil {
				return err
			}

			if err := config.Set(path, args[0], args[1]); err != nil {
				return err
			}

			_, _ = app.color(color.FgGreen).Fprintf(app.Out, "Set %s in %s\n", args[0], path)

			return nil
		},
	}
}

func newConfigUnsetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "unset KEY",
		Short:       "Unset a configuration value",
		Long:        "Remove a value from the configuration file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipSettingsAnnotation: constants.BooleanTrue},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath(cmd)
			if err != nil {
				return err
			}

			if err := config.Unset(path, args[0]); err != nil {
				return err
			}

			_, _ = app.color(color.FgGreen).Fprintf(app.Out, "Removed %s from %s\n", args[0], path)

			return nil
		},
	}
}

func configFilePath(cmd *cobra.Command) (string, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return "", fmt.Errorf("reading flag --config: %w", err)
	}

	if path != "" {
		return path, nil
	}

	return config.DefaultPath()
}
