package dataverse_test

import (
	"testing"

	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for detailed testing
func TestConnectionOptions_Validate(t *testing.T) {
	t.Parallel()

	sp := func(mutate func(o *dataverse.ConnectionOptions)) *dataverse.ConnectionOptions {
		o := &dataverse.ConnectionOptions{
			URL:          "https://contoso.crm.dynamics.com",
			AuthMode:     dataverse.AuthModeServicePrincipal,
			TenantID:     "tenant",
			ClientID:     "client",
			ClientSecret: "secret",
		}
		if mutate != nil {
			mutate(o)
		}

		return o
	}

	tests := []struct {
		name    string
		options *dataverse.ConnectionOptions
		field   string
		wantErr error
	}{
		{name: "service principal with secret", options: sp(nil)},
		{
			name: "service principal with certificate",
			options: sp(func(o *dataverse.ConnectionOptions) {
				o.ClientSecret = ""
				o.CertificatePath = "/tmp/cert.pfx"
			}),
		},
		{
			name: "interactive needs only url",
			options: &dataverse.ConnectionOptions{
				URL:      "https://contoso.crm.dynamics.com",
				AuthMode: dataverse.AuthModeInteractive,
			},
		},
		{
			name:    "nil options",
			options: nil,
			wantErr: dataverse.ErrConfigRequired,
		},
		{
			name:    "missing url",
			options: sp(func(o *dataverse.ConnectionOptions) { o.URL = "  " }),
			field:   "url",
			wantErr: dataverse.ErrURLRequired,
		},
		{
			name:    "relative url",
			options: sp(func(o *dataverse.ConnectionOptions) { o.URL = "contoso.crm.dynamics.com" }),
			field:   "url",
			wantErr: dataverse.ErrInvalidURL,
		},
		{
			name:    "unknown mode",
			options: sp(func(o *dataverse.ConnectionOptions) { o.AuthMode = "kerberos" }),
			field:   "auth_mode",
			wantErr: dataverse.ErrUnsupportedAuthMode,
		},
		{
			name:    "missing tenant",
			options: sp(func(o *dataverse.ConnectionOptions) { o.TenantID = "" }),
			field:   "tenant_id",
			wantErr: dataverse.ErrTenantIDRequired,
		},
		{
			name:    "missing client id",
			options: sp(func(o *dataverse.ConnectionOptions) { o.ClientID = "" }),
			field:   "client_id",
			wantErr: dataverse.ErrClientIDRequired,
		},
		{
			name:    "no credential",
			options: sp(func(o *dataverse.ConnectionOptions) { o.ClientSecret = "" }),
			field:   "client_secret",
			wantErr: dataverse.ErrCredentialRequired,
		},
		{
			name:    "both credentials",
			options: sp(func(o *dataverse.ConnectionOptions) { o.CertificatePath = "/tmp/cert.pem" }),
			field:   "client_secret",
			wantErr: dataverse.ErrAmbiguousCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.options.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, dataverse.IsConfiguration(err))

			var cfgErr *dataverse.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestConnectionOptions_Scope(t *testing.T) {
	t.Parallel()

	opts := &dataverse.ConnectionOptions{URL: "https://contoso.crm4.dynamics.com/some/path/"}
	scope, err := opts.Scope()
	require.NoError(t, err)
	assert.Equal(t, "https://contoso.crm4.dynamics.com/.default", scope)

	opts.AuthMode = dataverse.AuthModeServicePrincipal
	same, err := opts.Scope()
	require.NoError(t, err)
	assert.Equal(t, scope, same)

	_, err = (&dataverse.ConnectionOptions{URL: "nohost"}).Scope()
	assert.True(t, dataverse.IsConfiguration(err))
}

func TestConnectionOptions_AuthorityURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, dataverse.DefaultAuthority, (&dataverse.ConnectionOptions{}).AuthorityURL())
	assert.Equal(t, "https://login.microsoftonline.us",
		(&dataverse.ConnectionOptions{Authority: "https://login.microsoftonline.us/"}).AuthorityURL())
}

func TestParseAuthMode(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]dataverse.AuthMode{
		"interactive":       dataverse.AuthModeInteractive,
		"Device-Code":       dataverse.AuthModeInteractive,
		"ServicePrincipal":  dataverse.AuthModeServicePrincipal,
		"service-principal": dataverse.AuthModeServicePrincipal,
		" sp ":              dataverse.AuthModeServicePrincipal,
	} {
		got, err := dataverse.ParseAuthMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := dataverse.ParseAuthMode("password")
	assert.ErrorIs(t, err, dataverse.ErrUnsupportedAuthMode)
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://contoso.crm.dynamics.com", dataverse.NormalizeURL("https://contoso.crm.dynamics.com///"))
	assert.Equal(t, "https://contoso.crm.dynamics.com", dataverse.NormalizeURL("contoso.crm.dynamics.com"))
	assert.Equal(t, "http://localhost:8080", dataverse.NormalizeURL("http://localhost:8080/"))
	assert.Empty(t, dataverse.NormalizeURL("  "))
}
