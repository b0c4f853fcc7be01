package dataverse

import (
	"fmt"
	"net/url"
	"strings"
)

// AuthMode selects how a bearer token is obtained.
type AuthMode string

const (
	// AuthModeInteractive uses the device-code flow on behalf of a user.
	AuthModeInteractive AuthMode = "interactive"

	// AuthModeServicePrincipal uses an application registration with a
	// client secret or certificate.
	AuthModeServicePrincipal AuthMode = "serviceprincipal"
)

// DefaultAuthority is the Microsoft Entra ID authority host.
const DefaultAuthority = "https://login.microsoftonline.com"

// ParseAuthMode parses a user supplied auth mode. Matching is case-insensitive
// and tolerates "service-principal" and "sp".
func ParseAuthMode(value string) (AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "interactive", "devicecode", "device-code":
		return AuthModeInteractive, nil
	case "serviceprincipal", "service-principal", "sp":
		return AuthModeServicePrincipal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAuthMode, value)
	}
}

// ConnectionOptions holds everything needed to reach one environment.
// Treat it as immutable once Validate has succeeded.
type ConnectionOptions struct {
	// URL is the environment root, e.g. https://contoso.crm.dynamics.com.
	URL      string   `json:"url"       yaml:"url"`
	AuthMode AuthMode `json:"auth_mode" yaml:"auth_mode"`
	TenantID string   `json:"tenant_id" yaml:"tenant_id"`
	ClientID string   `json:"client_id" yaml:"client_id"`

	// Exactly one of ClientSecret or CertificatePath for service principals.
	ClientSecret        string `json:"-"                          yaml:"-"`
	CertificatePath     string `json:"certificate_path,omitempty" yaml:"certificate_path,omitempty"`
	CertificatePassword string `json:"-"                          yaml:"-"`

	// Authority overrides DefaultAuthority (sovereign clouds, tests).
	Authority string `json:"authority,omitempty" yaml:"authority,omitempty"`
}

// Validate checks the invariants of the options without any network access.
func (o *ConnectionOptions) Validate() error {
	if o == nil {
		return &ConfigurationError{Err: ErrConfigRequired}
	}

	if strings.TrimSpace(o.URL) == "" {
		return &ConfigurationError{Field: "url", Err: ErrURLRequired}
	}

	if _, err := o.parsedURL(); err != nil {
		return err
	}

	switch o.AuthMode {
	case AuthModeInteractive:
		return nil
	case AuthModeServicePrincipal:
		return o.validateServicePrincipal()
	default:
		return &ConfigurationError{Field: "auth_mode", Err: fmt.Errorf("%w: %q", ErrUnsupportedAuthMode, o.AuthMode)}
	}
}

func (o *ConnectionOptions) validateServicePrincipal() error {
	if strings.TrimSpace(o.TenantID) == "" {
		return &ConfigurationError{Field: "tenant_id", Err: ErrTenantIDRequired}
	}

	if strings.TrimSpace(o.ClientID) == "" {
		return &ConfigurationError{Field: "client_id", Err: ErrClientIDRequired}
	}

	hasSecret := o.ClientSecret != ""
	hasCert := strings.TrimSpace(o.CertificatePath) != ""

	switch {
	case hasSecret && hasCert:
		return &ConfigurationError{Field: "client_secret", Err: ErrAmbiguousCredential}
	case !hasSecret && !hasCert:
		return &ConfigurationError{Field: "client_secret", Err: ErrCredentialRequired}
	}

	return nil
}

// Scope derives the token audience from the environment host. It does not
// depend on the auth mode.
func (o *ConnectionOptions) Scope() (string, error) {
	u, err := o.parsedURL()
	if err != nil {
		return "", err
	}

	return u.Scheme + "://" + u.Host + "/.default", nil
}

// AuthorityURL returns the configured authority without a trailing slash.
func (o *ConnectionOptions) AuthorityURL() string {
	if o.Authority == "" {
		return DefaultAuthority
	}

	return strings.TrimSuffix(o.Authority, "/")
}

// UsesCertificate reports whether certificate material was supplied.
func (o *ConnectionOptions) UsesCertificate() bool {
	return strings.TrimSpace(o.CertificatePath) != ""
}

func (o *ConnectionOptions) parsedURL() (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(o.URL))
	if err != nil {
		return nil, &ConfigurationError{Field: "url", Err: fmt.Errorf("%w: %w", ErrInvalidURL, err)}
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, &ConfigurationError{Field: "url", Message: o.URL, Err: ErrInvalidURL}
	}

	return u, nil
}

// NormalizeURL trims trailing slashes and adds https:// when no scheme is
// present.
func NormalizeURL(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return endpoint
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}
