package constants

import "errors"

// Configuration errors.
var (
	ErrConfigFileUnreadable = errors.New("configuration file could not be read")
	ErrInvalidOutputFormat  = errors.New("invalid output format")
	ErrInvalidDepth         = errors.New("diagram depth out of range")
	ErrSecretPromptNoTTY    = errors.New("--prompt-secret requires an interactive terminal")
)

// Command argument errors.
var (
	ErrSolutionRequired     = errors.New("solution name is required (argument, --solution or DVDOC_SOLUTION)")
	ErrDiagramRootsRequired = errors.New("no entities to draw (use --entity or a solution with tables)")
)

// Authentication errors.
var (
	ErrDeviceCodeDeclined = errors.New("device code login was declined")
	ErrDeviceCodeExpired  = errors.New("device code expired before the login completed")
	ErrEmptyAccessToken   = errors.New("identity provider returned an empty access token")
	ErrNoRefreshToken     = errors.New("no refresh token available")
)
