package secrets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metryx-io/metryx/internal/core/domain"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cipher, err := LoadOrCreate(filepath.Join(t.TempDir(), "key.txt"))
	require.NoError(t, err)

	payload := domain.CredentialPayload{
		"client_id":     "abc",
		"client_secret": "s3cret",
		"refresh_token": "tok",
	}

	sealed, err := cipher.Encrypt(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "s3cret")

	opened, err := cipher.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, payload, opened)
}

func TestLoadOrCreatePersistsKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "key.txt")

	first, err := LoadOrCreate(keyPath)
	require.NoError(t, err)

	sealed, err := first.Encrypt(domain.CredentialPayload{"api_key": "k"})
	require.NoError(t, err)

	// A second load must decrypt what the first instance sealed.
	second, err := LoadOrCreate(keyPath)
	require.NoError(t, err)

	opened, err := second.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "k", opened["api_key"])
}

func TestDecryptRejectsForeignKey(t *testing.T) {
	dir := t.TempDir()
	ours, err := LoadOrCreate(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	theirs, err := LoadOrCreate(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)

	sealed, err := ours.Encrypt(domain.CredentialPayload{"api_key": "k"})
	require.NoError(t, err)

	_, err = theirs.Decrypt(sealed)
	assert.Error(t, err)
}
