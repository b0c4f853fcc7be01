// Package dvclient provides the main entry point for creating Dataverse
// metadata clients
package dvclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/dvdoc/internal/auth"
	"github.com/fivetwenty-io/dvdoc/internal/client"
	"github.com/fivetwenty-io/dvdoc/internal/constants"
	dvhttp "github.com/fivetwenty-io/dvdoc/internal/http"
	"github.com/fivetwenty-io/dvdoc/internal/logging"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/google/uuid"
)

// New creates a Dataverse client for the environment in config. Connection
// settings are validated here, before any network access; the first token is
// acquired lazily by the first request.
func New(ctx context.Context, config *dataverse.Config) (dataverse.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if config == nil {
		return nil, &dataverse.ConfigurationError{Err: dataverse.ErrConfigRequired}
	}

	options := config.Connection
	options.URL = dataverse.NormalizeURL(options.URL)

	tokenManager, err := createTokenManager(config, options)
	if err != nil {
		return nil, err
	}

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	apiVersion := strings.Trim(config.APIVersion, "/")
	if apiVersion == "" {
		apiVersion = constants.APIVersion
	}

	httpClient := dvhttp.NewClient(options.URL+constants.APIPathPrefix+apiVersion, tokenManager, httpOpts...)

	return client.New(httpClient), nil
}

// createTokenManager picks a static token when one is supplied and the
// identity provider otherwise.
func createTokenManager(config *dataverse.Config, options dataverse.ConnectionOptions) (auth.TokenManager, error) {
	if config.AccessToken != "" {
		if options.URL == "" {
			return nil, &dataverse.ConfigurationError{Field: "url", Err: dataverse.ErrURLRequired}
		}

		if _, err := options.Scope(); err != nil {
			return nil, err
		}

		return auth.NewStaticTokenManager(config.AccessToken, time.Time{}), nil
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	providerOpts := []auth.ProviderOption{
		auth.WithDeviceCodeHandler(config.DeviceCodeHandler),
	}

	if config.Logger != nil {
		providerOpts = append(providerOpts, auth.WithProviderLogger(config.Logger))
	}

	return auth.NewTokenManager(auth.NewProvider(providerOpts...), options), nil
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *dataverse.Config) ([]dvhttp.Option, error) {
	var httpOpts []dvhttp.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, dvhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, dvhttp.WithDebug(true))

		if config.Logger != nil {
			metrics := dvhttp.NewMetricsCollector()

			httpOpts = append(httpOpts,
				dvhttp.WithLeveledLogger(logging.NewRetryLogger(config.Logger)),
				dvhttp.WithRequestInterceptor(metrics.RequestInterceptor()),
				dvhttp.WithResponseInterceptor(metrics.ResponseInterceptor()),
				dvhttp.WithResponseInterceptor(dvhttp.LoggingResponseInterceptor(config.Logger)),
				dvhttp.WithResponseInterceptor(metrics.LoggingInterceptor(config.Logger)))
		}
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, dvhttp.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, dvhttp.WithHTTPClient(&http.Client{Timeout: config.HTTPTimeout}))
	}

	// RetryMax 0 keeps the default budget; a negative value disables retries.
	if config.RetryMax != 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		retryMax := constants.DefaultRetryMax
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		switch {
		case config.RetryMax > 0:
			retryMax = config.RetryMax
		case config.RetryMax < 0:
			retryMax = 0
		}

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, dvhttp.WithRetryConfig(retryMax, retryWaitMin, retryWaitMax))
	}

	if config.BackoffMultiplier > 0 {
		httpOpts = append(httpOpts, dvhttp.WithBackoffMultiplier(config.BackoffMultiplier))
	}

	httpOpts = append(httpOpts, dvhttp.WithRequestInterceptor(dvhttp.RequestIDInterceptor()))

	if len(config.Headers) > 0 {
		httpOpts = append(httpOpts, dvhttp.WithRequestInterceptor(dvhttp.HeaderInterceptor(config.Headers)))
	}

	if config.CallerID != "" {
		callerID, err := uuid.Parse(config.CallerID)
		if err != nil {
			return nil, &dataverse.ConfigurationError{Field: "caller_id", Err: fmt.Errorf("%w: %w", dataverse.ErrInvalidArgument, err)}
		}

		httpOpts = append(httpOpts, dvhttp.WithRequestInterceptor(dvhttp.CallerIDInterceptor(callerID)))
	}

	return httpOpts, nil
}

// NewWithToken creates a client that sends a bearer token you already have.
func NewWithToken(ctx context.Context, url, token string) (dataverse.Client, error) {
	return New(ctx, &dataverse.Config{
		Connection:  dataverse.ConnectionOptions{URL: url},
		AccessToken: token,
	})
}

// NewInteractive creates a client that signs a user in with the device-code
// flow. handler receives the sign-in instructions.
func NewInteractive(ctx context.Context, url, clientID string, handler dataverse.DeviceCodeHandler) (dataverse.Client, error) {
	return New(ctx, &dataverse.Config{
		Connection: dataverse.ConnectionOptions{
			URL:      url,
			AuthMode: dataverse.AuthModeInteractive,
			ClientID: clientID,
		},
		DeviceCodeHandler: handler,
	})
}

// NewWithClientSecret creates a client that authenticates as a service
// principal with a client secret.
func NewWithClientSecret(ctx context.Context, url, tenantID, clientID, clientSecret string) (dataverse.Client, error) {
	return New(ctx, &dataverse.Config{
		Connection: dataverse.ConnectionOptions{
			URL:          url,
			AuthMode:     dataverse.AuthModeServicePrincipal,
			TenantID:     tenantID,
			ClientID:     clientID,
			ClientSecret: clientSecret,
		},
	})
}

// NewWithCertificate creates a client that authenticates as a service
// principal with a certificate. password may be empty for PEM files.
func NewWithCertificate(ctx context.Context, url, tenantID, clientID, certificatePath, password string) (dataverse.Client, error) {
	return New(ctx, &dataverse.Config{
		Connection: dataverse.ConnectionOptions{
			URL:                 url,
			AuthMode:            dataverse.AuthModeServicePrincipal,
			TenantID:            tenantID,
			ClientID:            clientID,
			CertificatePath:     certificatePath,
			CertificatePassword: password,
		},
	})
}
