package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// servicePrincipal acquires an app-only token with a client secret or a
// certificate client assertion.
func (p *Provider) servicePrincipal(ctx context.Context, options *dataverse.ConnectionOptions, scope string) (*oauth2.Token, error) {
	endpoint := p.endpoint(options)

	cfg := &clientcredentials.Config{
		ClientID:  options.ClientID,
		TokenURL:  endpoint.TokenURL,
		Scopes:    []string{scope},
		AuthStyle: oauth2.AuthStyleInParams,
	}

	if options.UsesCertificate() {
		cert, err := LoadCertificate(options.CertificatePath, options.CertificatePassword)
		if err != nil {
			return nil, err
		}

		assertion, err := cert.Assertion(options.ClientID, endpoint.TokenURL, p.now())
		if err != nil {
			return nil, err
		}

		cfg.EndpointParams = url.Values{
			"client_assertion_type": {constants.ClientAssertionType},
			"client_assertion":      {assertion},
		}

		p.debug("Requesting token with certificate", map[string]interface{}{
			"client_id":  options.ClientID,
			"thumbprint": cert.Thumbprint(),
		})
	} else {
		cfg.ClientSecret = options.ClientSecret

		p.debug("Requesting token with client secret", map[string]interface{}{
			"client_id": options.ClientID,
		})
	}

	tok, err := cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("client credentials grant failed: %w", err)
	}

	return tok, nil
}
