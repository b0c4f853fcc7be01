package dataverse

import (
	"context"
	"time"
)

// SolutionsClient resolves solutions.
type SolutionsClient interface {
	Get(ctx context.Context, uniqueName string) (*Solution, error)
}

// EnvironmentVariablesClient reads environment variables in a solution.
type EnvironmentVariablesClient interface {
	List(ctx context.Context, solution string) ([]EnvironmentVariable, error)
}

// QueuesClient reads queues in a solution.
type QueuesClient interface {
	List(ctx context.Context, solution string) ([]Queue, error)
}

// SecurityRolesClient reads security roles in a solution.
type SecurityRolesClient interface {
	List(ctx context.Context, solution string) ([]SecurityRole, error)
}

// OptionSetsClient reads global option sets in a solution.
type OptionSetsClient interface {
	List(ctx context.Context, solution string) ([]OptionSet, error)
}

// ProcessesClient reads classic processes in a solution.
type ProcessesClient interface {
	List(ctx context.Context, solution string) ([]Process, error)
}

// CloudFlowsClient reads cloud flows in a solution.
type CloudFlowsClient interface {
	List(ctx context.Context, solution string) ([]CloudFlow, error)
}

// EntityRelationshipsClient crawls entity metadata for diagrams.
type EntityRelationshipsClient interface {
	// Read follows relationships from roots up to depth hops. Depth 0 reads
	// only the roots' own relationships.
	Read(ctx context.Context, roots []string, depth int) (*EntityGraph, error)
	// SolutionEntities lists the logical names of entities in a solution.
	SolutionEntities(ctx context.Context, solution string) ([]string, error)
}

// ReaderClients provides access to every metadata reader.
type ReaderClients interface {
	Solutions() SolutionsClient
	EnvironmentVariables() EnvironmentVariablesClient
	Queues() QueuesClient
	SecurityRoles() SecurityRolesClient
	OptionSets() OptionSetsClient
	Processes() ProcessesClient
	CloudFlows() CloudFlowsClient
	EntityRelationships() EntityRelationshipsClient
}

// Client is a Dataverse metadata client bound to one environment.
type Client interface {
	ReaderClients

	WhoAmI(ctx context.Context) (*WhoAmI, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// DeviceCodeHandler receives the instruction text of a device-code login.
type DeviceCodeHandler func(message string)

// Config represents client configuration for building a Client.
//
// Connection is validated before anything touches the network. Retry
// behaviour can be tuned via RetryMax/RetryWaitMin/RetryWaitMax; when unset the
// transport retries 3 times starting at 1s, doubling, capped at 30s.
type Config struct {
	Connection ConnectionOptions

	// AccessToken, when set, is used as a static bearer token and the
	// identity provider is never contacted.
	AccessToken string

	// APIVersion overrides the Web API version segment (default v9.2).
	APIVersion string

	HTTPTimeout       time.Duration
	RetryMax          int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	BackoffMultiplier float64

	// CallerID impersonates another user via the MSCRMCallerID header.
	CallerID string

	// Headers are added to every API request.
	Headers map[string]string

	Debug             bool
	Logger            Logger
	UserAgent         string
	DeviceCodeHandler DeviceCodeHandler
}
