package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// GenerateEd25519Key returns a new Ed25519 private key as PKCS8 PEM.
func GenerateEd25519Key() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: generate Ed25519 key: %w", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal PKCS8: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// LoadOrCreateSigningKey returns the PEM signing key stored sealed at path.
// A new key is generated and sealed when the file does not exist. An empty
// path yields an ephemeral key that is never written.
func LoadOrCreateSigningKey(path string, s *Sealer) ([]byte, error) {
	if path == "" {
		return GenerateEd25519Key()
	}

	sealed, err := os.ReadFile(path)
	switch {
	case err == nil:
		pemKey, err := s.Open(sealed)
		if err != nil {
			return nil, fmt.Errorf("cryptox: open signing key: %w", err)
		}
		return pemKey, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("cryptox: read signing key: %w", err)
	}

	pemKey, err := GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	sealed, err = s.Seal(pemKey)
	if err != nil {
		return nil, err
	}
	if err := writePrivateFile(path, sealed); err != nil {
		return nil, fmt.Errorf("cryptox: write signing key: %w", err)
	}
	return pemKey, nil
}
