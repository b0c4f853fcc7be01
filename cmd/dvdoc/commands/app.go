package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/fivetwenty-io/dvdoc/internal/config"
	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/internal/logging"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/fivetwenty-io/dvdoc/pkg/dvclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// ClientFactory builds a client from resolved settings.
type ClientFactory func(ctx context.Context, config *dataverse.Config) (dataverse.Client, error)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App carries the process-level dependencies shared by every command.
type App struct {
	Out        io.Writer
	Err        io.Writer
	NewClient  ClientFactory
	ReadSecret func() (string, error)
	LookupEnv  func(string) (string, bool)

	info     BuildInfo
	settings *config.Settings
	logger   *zap.Logger
}

// NewApp returns an App wired to the real process.
func NewApp() *App {
	return &App{
		Out:        os.Stdout,
		Err:        os.Stderr,
		NewClient:  dvclient.New,
		ReadSecret: readSecretFromTerminal,
		LookupEnv:  os.LookupEnv,
	}
}

// configure resolves settings and the logger once flags are parsed.
func (a *App) configure(cmd *cobra.Command) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("reading flag --config: %w", err)
	}

	settings, err := config.Load(configPath, a.LookupEnv, cmd.Flags())
	if err != nil {
		return err
	}

	promptSecret, err := cmd.Flags().GetBool("prompt-secret")
	if err != nil {
		return fmt.Errorf("reading flag --prompt-secret: %w", err)
	}

	if promptSecret {
		_, _ = fmt.Fprint(a.Err, "Client secret: ")

		secret, err := a.ReadSecret()

		_, _ = fmt.Fprintln(a.Err)

		if err != nil {
			return &dataverse.ConfigurationError{Field: config.KeyClientSecret, Err: err}
		}

		settings.Connection.ClientSecret = secret
	}

	logOpts := logging.OptionsFromEnv(a.LookupEnv, a.Err)

	if settings.Verbose {
		logOpts.Level = logging.LevelDebug
	}

	a.settings = settings
	a.logger = logging.New(logOpts)

	if settings.ConfigFile != "" {
		a.logger.Debug("Using config file", zap.String("path", settings.ConfigFile))
	}

	return nil
}

// client builds a Dataverse client from the resolved settings.
func (a *App) client(ctx context.Context) (dataverse.Client, error) {
	clientConfig := a.settings.ClientConfig()
	clientConfig.Logger = logging.NewAdapter(a.logger)
	clientConfig.UserAgent = "dvdoc/" + a.info.Version
	clientConfig.DeviceCodeHandler = func(message string) {
		_, _ = a.color(color.FgYellow, color.Bold).Fprintln(a.Err, message)
	}

	return a.NewClient(ctx, clientConfig)
}

// solutionName picks the positional argument over the configured solution.
func (a *App) solutionName(args []string) (string, error) {
	name := a.settings.Solution
	if len(args) > 0 {
		name = args[0]
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %w", dataverse.ErrInvalidArgument, constants.ErrSolutionRequired)
	}

	return name, nil
}

func (a *App) color(attributes ...color.Attribute) *color.Color {
	c := color.New(attributes...)
	if a.settings == nil || a.settings.NoColor {
		c.DisableColor()
	}

	return c
}

func readSecretFromTerminal() (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // stdin descriptor fits in int

	if !term.IsTerminal(fd) {
		return "", constants.ErrSecretPromptNoTTY
	}

	secret, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}

	return strings.TrimSpace(string(secret)), nil
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return constants.ExitOK
	case dataverse.IsCanceled(err):
		return constants.ExitCanceled
	case dataverse.IsConfiguration(err), errors.Is(err, dataverse.ErrInvalidArgument):
		return constants.ExitConfiguration
	case dataverse.IsAuthentication(err):
		return constants.ExitAuthentication
	case dataverse.IsNotFound(err):
		return constants.ExitNotFound
	}

	trErr := &dataverse.TransportError{}
	if errors.As(err, &trErr) {
		return constants.ExitTransport
	}

	apiErr := &dataverse.APIError{}
	if errors.As(err, &apiErr) {
		return constants.ExitAPI
	}

	return constants.ExitError
}
