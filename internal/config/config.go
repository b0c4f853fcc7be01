// Package config resolves dvdoc settings from the command line, the
// environment and a YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Setting keys as they appear in the YAML file. Flags use the same names with
// dashes, environment variables are upper-cased with the DVDOC_ prefix.
const (
	KeyURL                 = "url"
	KeyAuthMode            = "auth_mode"
	KeyTenantID            = "tenant_id"
	KeyClientID            = "client_id"
	KeyClientSecret        = "client_secret"
	KeyCertificatePath     = "certificate_path"
	KeyCertificatePassword = "certificate_password"
	KeyAuthority           = "authority"
	KeyToken               = "token"
	KeyCallerID            = "caller_id"
	KeySolution            = "solution"
	KeyOutput              = "output"
	KeyVerbose             = "verbose"
	KeyNoColor             = "no_color"
	KeyRetries             = "retries"
	KeyTimeout             = "timeout"
)

const (
	configDirName  = ".dvdoc"
	configFileName = "config.yml"
)

var (
	// ErrUnknownKey is returned by Set and Unset for keys outside the schema.
	ErrUnknownKey = errors.New("unknown configuration key")

	// ErrConfigFileNotFound is returned when an explicit --config path does
	// not exist.
	ErrConfigFileNotFound = errors.New("config file not found")
)

var stringKeys = []string{
	KeyURL, KeyAuthMode, KeyTenantID, KeyClientID, KeyClientSecret,
	KeyCertificatePath, KeyCertificatePassword, KeyAuthority, KeyToken,
	KeyCallerID, KeySolution, KeyOutput,
}

// Keys lists every key accepted in the configuration file.
func Keys() []string {
	return append(append([]string{}, stringKeys...), KeyVerbose, KeyNoColor, KeyRetries, KeyTimeout)
}

// IsSecret reports whether the value of key must not be displayed.
func IsSecret(key string) bool {
	switch key {
	case KeyClientSecret, KeyCertificatePassword, KeyToken:
		return true
	default:
		return false
	}
}

// Layer is one source of settings. A nil field is unset and falls through to
// the next layer.
type Layer struct {
	URL                 *string
	AuthMode            *string
	TenantID            *string
	ClientID            *string
	ClientSecret        *string
	CertificatePath     *string
	CertificatePassword *string
	Authority           *string
	Token               *string
	CallerID            *string
	Solution            *string
	Output              *string
	Verbose             *bool
	NoColor             *bool
	Retries             *int
	Timeout             *time.Duration
}

func (l *Layer) stringField(key string) **string {
	switch key {
	case KeyURL:
		return &l.URL
	case KeyAuthMode:
		return &l.AuthMode
	case KeyTenantID:
		return &l.TenantID
	case KeyClientID:
		return &l.ClientID
	case KeyClientSecret:
		return &l.ClientSecret
	case KeyCertificatePath:
		return &l.CertificatePath
	case KeyCertificatePassword:
		return &l.CertificatePassword
	case KeyAuthority:
		return &l.Authority
	case KeyToken:
		return &l.Token
	case KeyCallerID:
		return &l.CallerID
	case KeySolution:
		return &l.Solution
	case KeyOutput:
		return &l.Output
	default:
		return nil
	}
}

// Settings is the merged configuration.
type Settings struct {
	Connection  dataverse.ConnectionOptions `json:"connection"          yaml:"connection"`
	AccessToken string                      `json:"-"                   yaml:"-"`
	CallerID    string                      `json:"caller_id,omitempty" yaml:"caller_id,omitempty"`
	Solution    string                      `json:"solution,omitempty"  yaml:"solution,omitempty"`
	Output      string                      `json:"output"              yaml:"output"`
	Verbose     bool                        `json:"verbose"             yaml:"verbose"`
	NoColor     bool                        `json:"no_color"            yaml:"no_color"`
	RetryMax    int                         `json:"retries"             yaml:"retries"`
	HTTPTimeout time.Duration               `json:"timeout"             yaml:"timeout"`

	// ConfigFile is the file the file layer was read from, if any.
	ConfigFile string `json:"config_file,omitempty" yaml:"config_file,omitempty"`
}

// DefaultPath returns $HOME/.dvdoc/config.yml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, configDirName, configFileName), nil
}

// FileLayer reads path, or the default location when path is empty. A
// missing default file yields an empty layer; a missing explicit file is an
// error.
func FileLayer(path string) (Layer, string, error) {
	explicit := path != ""

	if !explicit {
		defaultPath, err := DefaultPath()
		if err != nil {
			return Layer{}, "", &dataverse.ConfigurationError{Field: "config", Err: err}
		}

		path = defaultPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return Layer{}, "", nil
		}

		return Layer{}, "", &dataverse.ConfigurationError{Field: "config", Message: path, Err: ErrConfigFileNotFound}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return Layer{}, "", &dataverse.ConfigurationError{
			Field: "config", Message: path, Err: fmt.Errorf("%w: %w", constants.ErrConfigFileUnreadable, err),
		}
	}

	layer, err := layerFromViper(v)
	if err != nil {
		return Layer{}, "", err
	}

	return layer, path, nil
}

func layerFromViper(v *viper.Viper) (Layer, error) {
	var layer Layer

	for _, key := range stringKeys {
		if v.IsSet(key) {
			value := v.GetString(key)
			*layer.stringField(key) = &value
		}
	}

	var err error

	if layer.Verbose, err = viperBool(v, KeyVerbose); err != nil {
		return Layer{}, err
	}

	if layer.NoColor, err = viperBool(v, KeyNoColor); err != nil {
		return Layer{}, err
	}

	if v.IsSet(KeyRetries) {
		retries, err := cast.ToIntE(v.Get(KeyRetries))
		if err != nil || retries < 0 {
			return Layer{}, &dataverse.ConfigurationError{Field: KeyRetries, Message: v.GetString(KeyRetries), Err: dataverse.ErrInvalidArgument}
		}

		layer.Retries = &retries
	}

	if v.IsSet(KeyTimeout) {
		timeout, err := parseTimeout(v.GetString(KeyTimeout))
		if err != nil {
			return Layer{}, err
		}

		layer.Timeout = &timeout
	}

	return layer, nil
}

// EnvName returns the environment variable for key, e.g. DVDOC_TENANT_ID.
func EnvName(key string) string {
	return constants.EnvPrefix + "_" + strings.ToUpper(key)
}

// EnvLayer reads DVDOC_* variables through lookup, normally os.LookupEnv,
// and parses them with the same rules as the config file.
func EnvLayer(lookup func(string) (string, bool)) (Layer, error) {
	v := viper.New()

	for _, key := range Keys() {
		if value, ok := lookup(EnvName(key)); ok {
			v.Set(key, value)
		}
	}

	return layerFromViper(v)
}

// viperBool returns nil when key is unset and rejects values that are not
// booleans instead of reading them as false.
func viperBool(v *viper.Viper, key string) (*bool, error) {
	if !v.IsSet(key) {
		return nil, nil //nolint:nilnil // unset
	}

	parsed, err := cast.ToBoolE(v.Get(key))
	if err != nil {
		return nil, &dataverse.ConfigurationError{Field: key, Message: v.GetString(key), Err: dataverse.ErrInvalidArgument}
	}

	return &parsed, nil
}

// FlagName returns the command-line flag for key, e.g. tenant-id.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// RegisterFlags defines one flag per setting on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(FlagName(KeyURL), "", "environment URL, e.g. https://contoso.crm.dynamics.com")
	flags.String(FlagName(KeyAuthMode), "", "authentication mode (interactive, serviceprincipal)")
	flags.String(FlagName(KeyTenantID), "", "Microsoft Entra tenant ID")
	flags.String(FlagName(KeyClientID), "", "application (client) ID")
	flags.String(FlagName(KeyClientSecret), "", "client secret for service principals")
	flags.String(FlagName(KeyCertificatePath), "", "certificate file (PEM or PFX) for service principals")
	flags.String(FlagName(KeyCertificatePassword), "", "password of a PFX certificate")
	flags.String(FlagName(KeyAuthority), "", "identity provider authority (default "+dataverse.DefaultAuthority+")")
	flags.StringP(FlagName(KeyToken), "t", "", "bearer token to use instead of signing in")
	flags.String(FlagName(KeyCallerID), "", "system user ID to impersonate")
	flags.StringP(FlagName(KeySolution), "s", "", "unique name of the solution")
	flags.StringP(FlagName(KeyOutput), "o", constants.FormatTable, "output format (table, json, yaml, markdown)")
	flags.BoolP(FlagName(KeyVerbose), "v", false, "verbose output")
	flags.Bool(FlagName(KeyNoColor), false, "disable colored output")
	flags.Int(FlagName(KeyRetries), constants.DefaultRetryMax, "retries for throttled or failed requests (0 disables)")
	flags.Duration(FlagName(KeyTimeout), constants.DefaultHTTPTimeout, "timeout of a single HTTP request")
}

// FlagLayer reads the flags the user actually set. Defaults are ignored so
// that lower layers can fill them in.
func FlagLayer(flags *pflag.FlagSet) (Layer, error) {
	var layer Layer

	for _, key := range stringKeys {
		name := FlagName(key)
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}

		value, err := flags.GetString(name)
		if err != nil {
			return Layer{}, fmt.Errorf("reading flag --%s: %w", name, err)
		}

		*layer.stringField(key) = &value
	}

	var err error

	if layer.Verbose, err = changedBool(flags, KeyVerbose); err != nil {
		return Layer{}, err
	}

	if layer.NoColor, err = changedBool(flags, KeyNoColor); err != nil {
		return Layer{}, err
	}

	if name := FlagName(KeyRetries); flags.Lookup(name) != nil && flags.Changed(name) {
		retries, err := flags.GetInt(name)
		if err != nil {
			return Layer{}, fmt.Errorf("reading flag --%s: %w", name, err)
		}

		if retries < 0 {
			return Layer{}, &dataverse.ConfigurationError{Field: KeyRetries, Message: strconv.Itoa(retries), Err: dataverse.ErrInvalidArgument}
		}

		layer.Retries = &retries
	}

	if name := FlagName(KeyTimeout); flags.Lookup(name) != nil && flags.Changed(name) {
		timeout, err := flags.GetDuration(name)
		if err != nil {
			return Layer{}, fmt.Errorf("reading flag --%s: %w", name, err)
		}

		layer.Timeout = &timeout
	}

	return layer, nil
}

func changedBool(flags *pflag.FlagSet, key string) (*bool, error) {
	name := FlagName(key)
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return nil, nil //nolint:nilnil // unset
	}

	value, err := flags.GetBool(name)
	if err != nil {
		return nil, fmt.Errorf("reading flag --%s: %w", name, err)
	}

	return &value, nil
}

// Merge overlays layers from lowest to highest precedence.
func Merge(layers ...Layer) Layer {
	var merged Layer

	for i := range layers {
		layer := &layers[i]

		for _, key := range stringKeys {
			if value := *layer.stringField(key); value != nil {
				*merged.stringField(key) = value
			}
		}

		if layer.Verbose != nil {
			merged.Verbose = layer.Verbose
		}

		if layer.NoColor != nil {
			merged.NoColor = layer.NoColor
		}

		if layer.Retries != nil {
			merged.Retries = layer.Retries
		}

		if layer.Timeout != nil {
			merged.Timeout = layer.Timeout
		}
	}

	return merged
}

// Resolve merges file, env and flags (highest precedence last) and applies
// defaults. The auth mode defaults to interactive; interactive sign-in
// without a client ID uses the public client.
func Resolve(file, env, flags Layer) (*Settings, error) {
	merged := Merge(file, env, flags)

	settings := &Settings{
		Connection: dataverse.ConnectionOptions{
			URL:                 dataverse.NormalizeURL(deref(merged.URL)),
			TenantID:            strings.TrimSpace(deref(merged.TenantID)),
			ClientID:            strings.TrimSpace(deref(merged.ClientID)),
			ClientSecret:        deref(merged.ClientSecret),
			CertificatePath:     strings.TrimSpace(deref(merged.CertificatePath)),
			CertificatePassword: deref(merged.CertificatePassword),
			Authority:           strings.TrimSpace(deref(merged.Authority)),
		},
		AccessToken: strings.TrimSpace(deref(merged.Token)),
		CallerID:    strings.TrimSpace(deref(merged.CallerID)),
		Solution:    strings.TrimSpace(deref(merged.Solution)),
		Output:      strings.ToLower(strings.TrimSpace(deref(merged.Output))),
		RetryMax:    constants.DefaultRetryMax,
		HTTPTimeout: constants.DefaultHTTPTimeout,
	}

	mode := dataverse.AuthModeInteractive

	if merged.AuthMode != nil && strings.TrimSpace(*merged.AuthMode) != "" {
		parsed, err := dataverse.ParseAuthMode(*merged.AuthMode)
		if err != nil {
			return nil, &dataverse.ConfigurationError{Field: KeyAuthMode, Err: err}
		}

		mode = parsed
	}

	settings.Connection.AuthMode = mode

	if mode == dataverse.AuthModeInteractive && settings.Connection.ClientID == "" {
		settings.Connection.ClientID = constants.PublicClientID
	}

	switch settings.Output {
	case "":
		settings.Output = constants.FormatTable
	case "md":
		settings.Output = constants.FormatMarkdown
	case "yml":
		settings.Output = constants.FormatYAML
	}

	if merged.Verbose != nil {
		settings.Verbose = *merged.Verbose
	}

	if merged.NoColor != nil {
		settings.NoColor = *merged.NoColor
	}

	if merged.Retries != nil {
		settings.RetryMax = *merged.Retries
	}

	if merged.Timeout != nil {
		settings.HTTPTimeout = *merged.Timeout
	}

	return settings, nil
}

// Load resolves settings from the config file at path (or the default
// location), the environment seen through lookup and flags.
func Load(path string, lookup func(string) (string, bool), flags *pflag.FlagSet) (*Settings, error) {
	file, used, err := FileLayer(path)
	if err != nil {
		return nil, err
	}

	env, err := EnvLayer(lookup)
	if err != nil {
		return nil, err
	}

	cli, err := FlagLayer(flags)
	if err != nil {
		return nil, err
	}

	settings, err := Resolve(file, env, cli)
	if err != nil {
		return nil, err
	}

	settings.ConfigFile = used

	return settings, nil
}

// ClientConfig converts the settings to a client configuration. Zero retries
// disable retrying.
func (s *Settings) ClientConfig() *dataverse.Config {
	retryMax := s.RetryMax
	if retryMax == 0 {
		retryMax = -1
	}

	return &dataverse.Config{
		Connection:  s.Connection,
		AccessToken: s.AccessToken,
		CallerID:    s.CallerID,
		HTTPTimeout: s.HTTPTimeout,
		RetryMax:    retryMax,
		Debug:       s.Verbose,
	}
}

// Set writes key=value to the file at path, creating it when needed.
func Set(path, key, value string) error {
	key = normalizeKey(key)
	if !known(key) {
		return &dataverse.ConfigurationError{Field: key, Err: ErrUnknownKey}
	}

	candidate := viper.New()
	candidate.Set(key, value)

	if _, err := layerFromViper(candidate); err != nil {
		return err
	}

	v, err := openForWrite(path)
	if err != nil {
		return err
	}

	v.Set(key, value)

	return write(v, path)
}

// Unset removes key from the file at path.
func Unset(path, key string) error {
	key = normalizeKey(key)
	if !known(key) {
		return &dataverse.ConfigurationError{Field: key, Err: ErrUnknownKey}
	}

	v, err := openForWrite(path)
	if err != nil {
		return err
	}

	// viper cannot delete keys, so the file is rebuilt without it.
	rebuilt := viper.New()

	for _, existing := range v.AllKeys() {
		if existing != key {
			rebuilt.Set(existing, v.Get(existing))
		}
	}

	return write(rebuilt, path)
}

func openForWrite(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, &dataverse.ConfigurationError{
				Field: "config", Message: path, Err: fmt.Errorf("%w: %w", constants.ErrConfigFileUnreadable, err),
			}
		}
	}

	return v, nil
}

func write(v *viper.Viper, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(path, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

func known(key string) bool {
	return slices.Contains(Keys(), key)
}

func parseTimeout(value string) (time.Duration, error) {
	timeout, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || timeout <= 0 {
		return 0, &dataverse.ConfigurationError{Field: KeyTimeout, Message: value, Err: dataverse.ErrInvalidArgument}
	}

	return timeout, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}
