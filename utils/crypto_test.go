package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretEncryption(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		encrypted, err := EncryptSecret("binance-secret-value", "passphrase")
		require.NoError(t, err)
		assert.NotContains(t, encrypted, "binance-secret-value")

		decrypted, err := DecryptSecret(encrypted, "passphrase")
		require.NoError(t, err)
		assert.Equal(t, "binance-secret-value", decrypted)
	})

	t.Run("Nonce differs per call", func(t *testing.T) {
		a, err := EncryptSecret("same", "passphrase")
		require.NoError(t, err)
		b, err := EncryptSecret("same", "passphrase")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("Wrong passphrase fails", func(t *testing.T) {
		encrypted, err := EncryptSecret("value", "passphrase")
		require.NoError(t, err)
		_, err = DecryptSecret(encrypted, "other")
		assert.Error(t, err)
	})

	t.Run("Garbage input fails", func(t *testing.T) {
		_, err := DecryptSecret("not base64!", "passphrase")
		assert.Error(t, err)
		_, err = DecryptSecret("YWJj", "passphrase")
		assert.Error(t, err)
	})
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****wxyz", MaskSecret("abcdefwxyz"))
}

func TestWriteCredentialExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := WriteCredentialExport(dir, CredentialExport{
		UserID:    7,
		Email:     "trader@example.com",
		Exchange:  "binance",
		APIKey:    "enc-key",
		APISecret: "enc-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "7_binance.json"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry CredentialExport
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, 1, entry.Version)
	assert.Equal(t, "enc-secret", entry.APISecret)
}
