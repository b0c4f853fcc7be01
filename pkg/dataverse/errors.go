package dataverse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrConfigRequired       = errors.New("config is required")
	ErrURLRequired          = errors.New("environment URL is required")
	ErrInvalidURL           = errors.New("environment URL must be absolute (scheme and host)")
	ErrUnsupportedAuthMode  = errors.New("unsupported authentication mode")
	ErrTenantIDRequired     = errors.New("tenant id is required for service principal authentication")
	ErrClientIDRequired     = errors.New("client id is required")
	ErrCredentialRequired   = errors.New("a client secret or certificate path is required for service principal authentication")
	ErrAmbiguousCredential  = errors.New("client secret and certificate path are mutually exclusive")
	ErrInvalidCertificate   = errors.New("invalid certificate")
	ErrUnsupportedKeyType   = errors.New("certificate private key must be RSA")
	ErrNoTokenManager       = errors.New("no token manager configured")
	ErrStaticTokenNoRefresh = errors.New("static token cannot be refreshed")
)

// ConfigurationError reports invalid or incomplete connection settings. It is
// raised before any network call and is never retried.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	var sb strings.Builder

	sb.WriteString("configuration error")

	if e.Field != "" {
		sb.WriteString(" (" + e.Field + ")")
	}

	if e.Message != "" {
		sb.WriteString(": " + e.Message)
	}

	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// AuthenticationError wraps a rejection from the identity provider.
type AuthenticationError struct {
	Mode     AuthMode
	Err      error
	Guidance string
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	msg := fmt.Sprintf("authentication failed (%s)", e.Mode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	if e.Guidance != "" {
		msg += ". " + e.Guidance
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a named container does not resolve to a row.
type NotFoundError struct {
	Kind string
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
}

// APIError represents a non-2xx response from the Web API.
type APIError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Code       string `json:"code"        yaml:"code"`
	Message    string `json:"message"     yaml:"message"`
	RequestURI string `json:"request_uri" yaml:"request_uri"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	code := e.Code
	if code == "" {
		code = http.StatusText(e.StatusCode)
	}

	return fmt.Sprintf("%s: %s (status: %d, uri: %s)", code, e.Message, e.StatusCode, e.RequestURI)
}

// IsTransient reports whether the status is one the transport retries.
func (e *APIError) IsTransient() bool {
	return IsRetryableStatus(e.StatusCode)
}

// TransportError is returned once the retry budget is exhausted.
type TransportError struct {
	Attempts   int
	LastStatus int
	RequestURI string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	msg := fmt.Sprintf("request to %s failed after %d attempt(s)", e.RequestURI, e.Attempts)
	if e.LastStatus != 0 {
		msg += fmt.Sprintf(", last status %d", e.LastStatus)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrorEnvelope is the error body returned by the Web API.
type ErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// IsRetryableStatus reports whether a status code is transient.
func IsRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// IsConfiguration checks if the error is a configuration error.
func IsConfiguration(err error) bool {
	cfgErr := &ConfigurationError{}

	return errors.As(err, &cfgErr)
}

// IsAuthentication checks if the error is an authentication error.
func IsAuthentication(err error) bool {
	authErr := &AuthenticationError{}

	return errors.As(err, &authErr)
}

// IsNotFound checks if the error is a not found error. A 404 from the API
// also counts.
func IsNotFound(err error) bool {
	nfErr := &NotFoundError{}
	if errors.As(err, &nfErr) {
		return true
	}

	return StatusCode(err) == http.StatusNotFound
}

// IsTransient checks if the error is a transient API or transport failure.
func IsTransient(err error) bool {
	trErr := &TransportError{}
	if errors.As(err, &trErr) {
		return true
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.IsTransient()
	}

	return false
}

// IsCanceled checks if the error came from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// StatusCode extracts the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	trErr := &TransportError{}
	if errors.As(err, &trErr) {
		return trErr.LastStatus
	}

	return 0
}
