package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Web API addressing.
const (
	// APIVersion is the only Web API version this client speaks.
	APIVersion = "v9.2"

	// APIPathPrefix is inserted between the environment URL and the version.
	APIPathPrefix = "/api/data/"
)

// Standard request headers.
const (
	// HeaderAccept is the Accept header name.
	HeaderAccept = "Accept"

	// HeaderAuthorization is the Authorization header name.
	HeaderAuthorization = "Authorization"

	// HeaderODataMaxVersion caps the OData protocol version.
	HeaderODataMaxVersion = "OData-MaxVersion"

	// HeaderODataVersion pins the OData protocol version.
	HeaderODataVersion = "OData-Version"

	// HeaderPrefer asks for inline annotations.
	HeaderPrefer = "Prefer"

	// HeaderRetryAfter is the throttling hint returned with 429 and 503.
	HeaderRetryAfter = "Retry-After"

	// HeaderClientRequestID correlates a request with service-side logs.
	HeaderClientRequestID = "x-ms-client-request-id"

	// HeaderCallerID impersonates another system user.
	HeaderCallerID = "MSCRMCallerID"

	// HeaderUserAgent is the User-Agent header name.
	HeaderUserAgent = "User-Agent"

	// ContentTypeJSON is the accepted media type.
	ContentTypeJSON = "application/json"

	// ODataVersion is sent in both version headers.
	ODataVersion = "4.0"

	// PreferAnnotations requests every formatted-value annotation.
	PreferAnnotations = `odata.include-annotations="*"`

	// ODataNextLink marks a truncated collection response.
	ODataNextLink = "@odata.nextLink"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 100 * time.Second

	// ShortHTTPTimeout is used for quick operations such as token calls.
	ShortHTTPTimeout = 30 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries after the
	// first attempt.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the delay before the first retry.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax caps every computed or server-provided delay.
	DefaultRetryWaitMax = 30 * time.Second

	// ExponentialBackoffBase is the base for exponential backoff.
	ExponentialBackoffBase = 2.0

	// BackoffJitterFraction is the symmetric jitter applied to computed
	// delays (±20%).
	BackoffJitterFraction = 0.2
)

// Token handling.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second

	// DefaultDeviceCodePollInterval is used when the identity provider does
	// not send one.
	DefaultDeviceCodePollInterval = 5 * time.Second

	// DefaultAssertionLifetime is the validity of a certificate client
	// assertion.
	DefaultAssertionLifetime = 10 * time.Minute

	// ClientAssertionType is the RFC 7523 assertion type.
	ClientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

	// InteractiveTenant is used for device-code logins without a tenant.
	InteractiveTenant = "organizations"

	// OfflineAccessScope asks for a refresh token.
	OfflineAccessScope = "offline_access"

	// PublicClientID is the well-known first-party client id accepted by
	// Dataverse for interactive sign-in.
	PublicClientID = "51f81489-12ee-4a9e-aaae-a2591f45987d"
)

// Relationship crawl limits.
const (
	// DefaultDiagramDepth is the default number of hops from the root
	// entities.
	DefaultDiagramDepth = 1

	// MaxDiagramDepth bounds the crawl.
	MaxDiagramDepth = 5
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// DescriptionDisplayLength is the default length for displaying descriptions.
	DescriptionDisplayLength = 60

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// BooleanTrue string representation.
const BooleanTrue = "true"

// Format constants.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatMarkdown for Markdown output format.
	FormatMarkdown = "markdown"

	// FormatMermaid for Mermaid diagram output.
	FormatMermaid = "mermaid"
)

// Process exit codes.
const (
	// ExitOK is returned on success.
	ExitOK = 0

	// ExitError is returned for unclassified failures.
	ExitError = 1

	// ExitConfiguration is returned for invalid settings.
	ExitConfiguration = 2

	// ExitAuthentication is returned when no token could be obtained.
	ExitAuthentication = 3

	// ExitNotFound is returned when a solution does not exist.
	ExitNotFound = 4

	// ExitAPI is returned for non-transient API errors.
	ExitAPI = 5

	// ExitTransport is returned once retries are exhausted.
	ExitTransport = 6

	// ExitCanceled is returned on interrupt (128 + SIGINT).
	ExitCanceled = 130
)

// Environment variables.
const (
	// EnvPrefix prefixes every configuration environment variable.
	EnvPrefix = "DVDOC"

	// EnvLogLevel selects the zap level.
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogEncoding selects json or console logs.
	EnvLogEncoding = "LOG_ENCODING"
)
