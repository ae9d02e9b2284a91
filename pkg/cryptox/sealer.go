package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
)

var ErrCiphertext = errors.New("cryptox: ciphertext too short")

// Sealer encrypts small secrets at rest with AES-256-GCM. Sealed output is
// nonce || ciphertext || tag, with a fresh random nonce per call, so sealing
// the same plaintext twice gives different results.
//
// A Sealer is safe for concurrent use.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives an AES-256 key from material with SHA-256.
func NewSealer(material []byte) (*Sealer, error) {
	if len(material) == 0 {
		return nil, errors.New("cryptox: empty master key")
	}
	key := sha256.Sum256(material)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("cryptox: new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: new gcm: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// LoadMasterKey reads key material from path, then from the envKey variable.
// With neither set it returns an ephemeral random key and ephemeral=true;
// anything sealed with it is unreadable after restart.
func LoadMasterKey(path, envKey string) (material []byte, ephemeral bool, err error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("cryptox: read master key: %w", err)
		}
		return data, false, nil
	}
	if v := os.Getenv(envKey); v != "" {
		return []byte(v), false, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, false, fmt.Errorf("cryptox: generate master key: %w", err)
	}
	return buf, true, nil
}

// Seal encrypts and authenticates plaintext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("cryptox: read nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts a value from Seal. It returns
// ErrCiphertext when sealed is too short to hold a nonce and tag, and a
// wrapped error when authentication fails, which is the case for any value
// sealed under another master key.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n+s.aead.Overhead() {
		return nil, ErrCiphertext
	}
	out, err := s.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("cryptox: open: %w", err)
	}
	return out, nil
}

// SealString seals s and returns it as unpadded base64url, suitable for a TEXT column.
func (s *Sealer) SealString(plaintext string) (string, error) {
	b, err := s.Seal([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// OpenString reverses SealString.
func (s *Sealer) OpenString(sealed string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("cryptox: decode sealed value: %w", err)
	}
	out, err := s.Open(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
