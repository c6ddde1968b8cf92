package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diglink-inc/diglink/internal/shared/errors"
)

func TestAEADCipher_RoundTrip(t *testing.T) {
	cipher, err := NewAEADCipher("test-key")
	require.NoError(t, err)

	tests := []string{"", "hunter2", "p@ssw0rd with spaces", "日本語パスワード"}
	for _, plaintext := range tests {
		sealed, err := cipher.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, sealed)

		got, err := cipher.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestAEADCipher_NoncesDiffer(t *testing.T) {
	cipher, err := NewAEADCipher("test-key")
	require.NoError(t, err)

	a, err := cipher.Encrypt("same input")
	require.NoError(t, err)
	b, err := cipher.Encrypt("same input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAEADCipher_WrongKey(t *testing.T) {
	cipherA, err := NewAEADCipher("key-a")
	require.NoError(t, err)
	cipherB, err := NewAEADCipher("key-b")
	require.NoError(t, err)

	sealed, err := cipherA.Encrypt("secret")
	require.NoError(t, err)

	_, err = cipherB.Decrypt(sealed)
	require.Error(t, err)
	assert.True(t, errors.IsDecryptionError(err))
}

func TestAEADCipher_CorruptInput(t *testing.T) {
	cipher, err := NewAEADCipher("test-key")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
	}{
		{name: "not base64", input: "!!!not base64!!!"},
		{name: "truncated", input: "c2hvcnQ"},
		{name: "empty", input: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cipher.Decrypt(tt.input)
			require.Error(t, err)
			assert.True(t, errors.IsDecryptionError(err))
		})
	}
}

func TestNewAEADCipher_RequiresKey(t *testing.T) {
	_, err := NewAEADCipher("")
	require.Error(t, err)
}
