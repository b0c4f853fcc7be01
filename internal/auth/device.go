package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"golang.org/x/oauth2"
)

// Device-code error codes returned by the token endpoint.
const (
	errorCodeDeclined = "authorization_declined"
	errorCodeExpired  = "expired_token"
)

// interactive signs a user in. A previously signed-in account is renewed
// silently with its refresh token; otherwise the device-code flow runs and
// blocks until the user approves, the code expires, or ctx is done.
func (p *Provider) interactive(ctx context.Context, options *dataverse.ConnectionOptions, scope string) (*oauth2.Token, error) {
	if strings.TrimSpace(options.ClientID) == "" {
		return nil, &dataverse.ConfigurationError{Field: "client_id", Err: dataverse.ErrClientIDRequired}
	}

	cfg := &oauth2.Config{
		ClientID: options.ClientID,
		Endpoint: p.endpoint(options),
		Scopes:   []string{scope, constants.OfflineAccessScope},
	}

	if tok, err := p.silent(ctx, cfg); err == nil {
		return tok, nil
	} else if !errors.Is(err, constants.ErrNoRefreshToken) {
		if dataverse.IsCanceled(err) {
			return nil, err
		}

		p.debug("Silent token renewal failed, falling back to device code", map[string]interface{}{
			"error": err.Error(),
		})
	}

	auth, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device authorization request failed: %w", err)
	}

	if auth.Interval == 0 {
		auth.Interval = int64(constants.DefaultDeviceCodePollInterval / time.Second)
	}

	p.showDeviceCode(auth)

	tok, err := cfg.DeviceAccessToken(ctx, auth)
	if err != nil {
		return nil, deviceTokenError(err)
	}

	p.remember(tok)

	return tok, nil
}

// silent renews the cached account without user interaction.
func (p *Provider) silent(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	p.mu.Lock()
	account := p.account
	p.mu.Unlock()

	if account == nil || account.RefreshToken == "" {
		return nil, constants.ErrNoRefreshToken
	}

	// Force the refresh grant; the cached access token is for an earlier call.
	expired := *account
	expired.AccessToken = ""

	tok, err := cfg.TokenSource(ctx, &expired).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token grant failed: %w", err)
	}

	p.remember(tok)

	return tok, nil
}

func (p *Provider) remember(tok *oauth2.Token) {
	if tok == nil || tok.RefreshToken == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.account = tok
}

func (p *Provider) showDeviceCode(auth *oauth2.DeviceAuthResponse) {
	uri := auth.VerificationURI
	if uri == "" {
		uri = auth.VerificationURIComplete
	}

	message := fmt.Sprintf("To sign in, use a web browser to open the page %s and enter the code %s to authenticate.",
		uri, auth.UserCode)

	p.debug("Device code issued", map[string]interface{}{
		"verification_uri": uri,
		"expires_at":       auth.Expiry,
	})

	if p.deviceCodeHandler != nil {
		p.deviceCodeHandler(message)
	}
}

func deviceTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.ErrorCode {
		case errorCodeDeclined:
			return fmt.Errorf("%w: %w", constants.ErrDeviceCodeDeclined, err)
		case errorCodeExpired:
			return fmt.Errorf("%w: %w", constants.ErrDeviceCodeExpired, err)
		}
	}

	return err
}
