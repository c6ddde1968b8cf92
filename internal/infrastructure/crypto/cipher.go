// Package crypto provides reversible encryption for stored BlueStakes
// passwords. Unlike login passwords these must be recoverable, since the
// plaintext is replayed against the external API on every authentication.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/diglink-inc/diglink/internal/shared/errors"
)

// CredentialCipher encrypts and decrypts tenant credentials at rest.
type CredentialCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// AEADCipher implements CredentialCipher with XChaCha20-Poly1305. The
// configured key string is stretched to 32 bytes via SHA-256.
type AEADCipher struct {
	key [32]byte
}

// NewAEADCipher creates a cipher from the configured key material.
func NewAEADCipher(key string) (*AEADCipher, error) {
	if key == "" {
		return nil, fmt.Errorf("encryption key is required")
	}
	return &AEADCipher{key: sha256.Sum256([]byte(key))}, nil
}

var _ CredentialCipher = (*AEADCipher)(nil)

// Encrypt seals the plaintext and returns base64(nonce || ciphertext).
func (c *AEADCipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key[:])
	if err != nil {
		return "", fmt.Errorf("failed to build cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any failure surfaces as a DecryptionError: a
// stored password that cannot be decrypted indicates a configuration problem
// (rotated key, corrupted row) and callers treat it loudly.
func (c *AEADCipher) Decrypt(ciphertext string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.NewDecryptionError("stored credential is not valid base64", err.Error())
	}

	aead, err := chacha20poly1305.NewX(c.key[:])
	if err != nil {
		return "", fmt.Errorf("failed to build cipher: %w", err)
	}

	if len(sealed) < aead.NonceSize() {
		return "", errors.NewDecryptionError("stored credential is truncated")
	}

	nonce, ct := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", errors.NewDecryptionError("stored credential failed authentication", err.Error())
	}
	return string(plaintext), nil
}
