package auth

import (
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // x5t is defined as the SHA-1 thumbprint
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/fivetwenty-io/dvdoc/internal/constants"
	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/pkcs12"
)

// Certificate is an application credential: an X.509 certificate and its RSA
// private key.
type Certificate struct {
	Leaf *x509.Certificate
	Key  *rsa.PrivateKey
}

// LoadCertificate reads a certificate from path. With a password the file is
// decoded as a PKCS#12 container, otherwise as PEM holding a CERTIFICATE block
// and a PKCS#8 or PKCS#1 private key. Every failure is a configuration error
// naming the path.
func LoadCertificate(path, password string) (*Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, certificateError(path, err)
	}

	if password != "" {
		return decodePKCS12(path, data, password)
	}

	return decodePEM(path, data)
}

func decodePKCS12(path string, data []byte, password string) (*Certificate, error) {
	key, leaf, err := pkcs12.Decode(data, password)
	if err != nil {
		return nil, certificateError(path, err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, certificateError(path, dataverse.ErrUnsupportedKeyType)
	}

	return &Certificate{Leaf: leaf, Key: rsaKey}, nil
}

func decodePEM(path string, data []byte) (*Certificate, error) {
	cert := &Certificate{}

	for {
		var block *pem.Block

		block, data = pem.Decode(data)
		if block == nil {
			break
		}

		switch block.Type {
		case "CERTIFICATE":
			if cert.Leaf != nil {
				continue
			}

			leaf, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, certificateError(path, err)
			}

			cert.Leaf = leaf
		case "PRIVATE KEY", "RSA PRIVATE KEY":
			key, err := parsePrivateKey(block)
			if err != nil {
				return nil, certificateError(path, err)
			}

			cert.Key = key
		}
	}

	switch {
	case cert.Leaf == nil:
		return nil, certificateError(path, fmt.Errorf("%w: no CERTIFICATE block", dataverse.ErrInvalidCertificate))
	case cert.Key == nil:
		return nil, certificateError(path, fmt.Errorf("%w: no private key block", dataverse.ErrInvalidCertificate))
	}

	return cert, nil
}

func parsePrivateKey(block *pem.Block) (*rsa.PrivateKey, error) {
	if block.Type == "RSA PRIVATE KEY" {
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#1 key: %w", err)
		}

		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PKCS#8 key: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, dataverse.ErrUnsupportedKeyType
	}

	return rsaKey, nil
}

func certificateError(path string, err error) error {
	return &dataverse.ConfigurationError{
		Field:   "certificate_path",
		Message: fmt.Sprintf("cannot load certificate %s", path),
		Err:     err,
	}
}

// Thumbprint returns the base64url SHA-1 thumbprint used as the x5t header.
func (c *Certificate) Thumbprint() string {
	sum := sha1.Sum(c.Leaf.Raw) //nolint:gosec // see import

	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Assertion builds a signed RFC 7523 client assertion for tokenURL.
func (c *Certificate) Assertion(clientID, tokenURL string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{tokenURL},
		Issuer:    clientID,
		Subject:   clientID,
		ID:        uuid.NewString(),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(constants.DefaultAssertionLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["x5t"] = c.Thumbprint()

	signed, err := token.SignedString(c.Key)
	if err != nil {
		return "", fmt.Errorf("failed to sign client assertion: %w", err)
	}

	return signed, nil
}
