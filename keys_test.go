package seapack

import (
	"crypto/ed25519"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSigningKeyFromEnv(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	t.Setenv("ED25519_PRIV", base64.StdEncoding.EncodeToString(seed))

	key, err := LoadSigningKey("env:ED25519_PRIV")
	require.NoError(t, err)
	assert.Equal(t, ed25519.NewKeyFromSeed(seed), key)
}

func TestLoadSigningKeyFromFile(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	seed[5] = 42
	path := filepath.Join(t.TempDir(), "seed.key")
	require.NoError(t, os.WriteFile(path, seed, 0o600))

	key, err := LoadSigningKey(path)
	require.NoError(t, err)
	assert.Equal(t, ed25519.NewKeyFromSeed(seed), key)
}

func TestLoadSigningKeyFailures(t *testing.T) {
	t.Run("missing env var", func(t *testing.T) {
		_, err := LoadSigningKey("env:SEAPACK_NO_SUCH_VAR")
		assert.ErrorIs(t, err, ErrKeyLoad)
	})

	t.Run("bad base64", func(t *testing.T) {
		t.Setenv("ED25519_PRIV", "!!not base64!!")
		_, err := LoadSigningKey("env:ED25519_PRIV")
		assert.ErrorIs(t, err, ErrKeyLoad)
	})

	t.Run("wrong seed length", func(t *testing.T) {
		t.Setenv("ED25519_PRIV", base64.StdEncoding.EncodeToString(make([]byte, 16)))
		_, err := LoadSigningKey("env:ED25519_PRIV")
		assert.ErrorIs(t, err, ErrKeyLoad)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSigningKey(filepath.Join(t.TempDir(), "nope.key"))
		assert.ErrorIs(t, err, ErrKeyLoad)
	})
}

func TestParsePublicKey(t *testing.T) {
	key := ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize))
	public := key.Public().(ed25519.PublicKey)

	parsed, err := ParsePublicKey(base64.StdEncoding.EncodeToString(public))
	require.NoError(t, err)
	assert.Equal(t, public, parsed)

	_, err = ParsePublicKey("short")
	assert.ErrorIs(t, err, ErrKeyLoad)
}

func TestGenerateSigningSeed(t *testing.T) {
	seed_b64, public_b64, err := GenerateSigningSeed()
	require.NoError(t, err)

	seed, err := base64.StdEncoding.DecodeString(seed_b64)
	require.NoError(t, err)
	require.Len(t, seed, ed25519.SeedSize)

	public, err := base64.StdEncoding.DecodeString(public_b64)
	require.NoError(t, err)
	key := ed25519.NewKeyFromSeed(seed)
	assert.Equal(t, []byte(key.Public().(ed25519.PublicKey)), public)
}
