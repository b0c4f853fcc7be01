package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
)

// TokenManager hands bearer tokens to the HTTP layer.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// AccessTokenProvider acquires a token for a set of connection options.
// *Provider is the production implementation.
type AccessTokenProvider interface {
	GetAccessToken(ctx context.Context, options *dataverse.ConnectionOptions) (*Token, error)
}

// ProviderTokenManager fetches a token lazily on first use and caches it for
// the lifetime of the manager. It only goes back to the provider once the
// cached token is no longer valid.
type ProviderTokenManager struct {
	provider AccessTokenProvider
	options  dataverse.ConnectionOptions
	store    *TokenStore

	// fetchMu serialises acquisitions so concurrent callers never trigger two
	// device-code prompts.
	fetchMu sync.Mutex
}

// NewTokenManager creates a manager bound to one provider and one set of
// options. The options are copied.
func NewTokenManager(provider AccessTokenProvider, options dataverse.ConnectionOptions) *ProviderTokenManager {
	return &ProviderTokenManager{
		provider: provider,
		options:  options,
		store:    NewTokenStore(),
	}
}

// GetToken returns a valid access token, fetching one if necessary.
func (m *ProviderTokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	m.fetchMu.Lock()
	defer m.fetchMu.Unlock()

	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	token, err := m.fetch(ctx)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// RefreshToken forces a new acquisition. When it fails the cached token is
// dropped and the next GetToken goes back to the provider.
func (m *ProviderTokenManager) RefreshToken(ctx context.Context) error {
	m.fetchMu.Lock()
	defer m.fetchMu.Unlock()

	_, err := m.fetch(ctx)

	return err
}

// SetToken manually sets the access token.
func (m *ProviderTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}

func (m *ProviderTokenManager) fetch(ctx context.Context) (*Token, error) {
	if m.provider == nil {
		return nil, dataverse.ErrNoTokenManager
	}

	token, err := m.provider.GetAccessToken(ctx, &m.options)
	if err != nil {
		// A token that could not be renewed is not served again.
		m.store.Clear()

		return nil, err
	}

	m.store.Set(token)

	return token, nil
}

const staticMode dataverse.AuthMode = "token"

// StaticTokenManager serves a pre-acquired token and never contacts an
// identity provider.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager wraps an existing bearer token. A zero expiresAt
// means the expiry is unknown.
func NewStaticTokenManager(token string, expiresAt time.Time) *StaticTokenManager {
	m := &StaticTokenManager{store: NewTokenStore()}
	m.SetToken(token, expiresAt)

	return m
}

// GetToken returns the static token while it is valid.
func (m *StaticTokenManager) GetToken(_ context.Context) (string, error) {
	token := m.store.Get()
	if !token.Valid() {
		return "", &dataverse.AuthenticationError{
			Mode:     staticMode,
			Err:      fmt.Errorf("%w: token is empty or expired", dataverse.ErrStaticTokenNoRefresh),
			Guidance: "acquire a fresh access token and pass it again",
		}
	}

	return token.AccessToken, nil
}

// RefreshToken always fails for static tokens.
func (m *StaticTokenManager) RefreshToken(_ context.Context) error {
	return dataverse.ErrStaticTokenNoRefresh
}

// SetToken replaces the static token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}
