package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"golang.org/x/oauth2"
)

// Provider obtains bearer tokens from Microsoft Entra ID for either auth
// mode. A Provider remembers the interactive account it signed in last so
// that later calls can renew silently. It is safe for sequential use; the
// account cache is guarded for the odd concurrent caller.
type Provider struct {
	httpClient        *http.Client
	deviceCodeHandler dataverse.DeviceCodeHandler
	logger            dataverse.Logger
	now               func() time.Time

	mu      sync.Mutex
	account *oauth2.Token
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithHTTPClient sets the client used to talk to the identity provider.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithDeviceCodeHandler sets the callback that shows the device-code
// instructions to the user.
func WithDeviceCodeHandler(handler dataverse.DeviceCodeHandler) ProviderOption {
	return func(p *Provider) {
		p.deviceCodeHandler = handler
	}
}

// WithProviderLogger sets the logger.
func WithProviderLogger(logger dataverse.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a token provider.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		httpClient: &http.Client{Timeout: constants.ShortHTTPTimeout},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// GetAccessToken validates options and acquires a token for the mode they
// select. Invalid options fail before any network access.
func (p *Provider) GetAccessToken(ctx context.Context, options *dataverse.ConnectionOptions) (*Token, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	scope, err := options.Scope()
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	var tok *oauth2.Token

	switch options.AuthMode {
	case dataverse.AuthModeInteractive:
		tok, err = p.interactive(ctx, options, scope)
	case dataverse.AuthModeServicePrincipal:
		tok, err = p.servicePrincipal(ctx, options, scope)
	default:
		return nil, &dataverse.ConfigurationError{Field: "auth_mode", Err: dataverse.ErrUnsupportedAuthMode}
	}

	if err != nil {
		return nil, wrapProviderError(options.AuthMode, err)
	}

	if tok.AccessToken == "" {
		return nil, wrapProviderError(options.AuthMode, constants.ErrEmptyAccessToken)
	}

	return tokenFromOAuth2(tok), nil
}

func (p *Provider) endpoint(options *dataverse.ConnectionOptions) oauth2.Endpoint {
	tenant := strings.TrimSpace(options.TenantID)
	if tenant == "" {
		tenant = constants.InteractiveTenant
	}

	base := options.AuthorityURL() + "/" + tenant + "/oauth2/v2.0"

	return oauth2.Endpoint{
		TokenURL:      base + "/token",
		DeviceAuthURL: base + "/devicecode",
		AuthStyle:     oauth2.AuthStyleInParams,
	}
}

func (p *Provider) debug(msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, fields)
	}
}

// wrapProviderError turns identity-provider failures into an
// AuthenticationError. Configuration errors and cancellation pass through.
func wrapProviderError(mode dataverse.AuthMode, err error) error {
	if dataverse.IsConfiguration(err) || dataverse.IsCanceled(err) || dataverse.IsAuthentication(err) {
		return err
	}

	var guidance string

	switch mode {
	case dataverse.AuthModeServicePrincipal:
		guidance = "verify tenant id, client id, and credentials, and that the application user exists in the environment"
	default:
		guidance = "verify the client id and that the signed-in account has access to the environment"
	}

	return &dataverse.AuthenticationError{Mode: mode, Err: err, Guidance: guidance}
}
