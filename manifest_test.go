package seapack

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest(t *testing.T) *Manifest {
	t.Helper()

	grid, err := NewGrid(30, 60, -80, -10, 0.5)
	require.NoError(t, err)

	return &Manifest{
		SchemaVersion: ManifestSchemaVersion,
		Region:        "NATL_050",
		CycleIso:      "2025-09-15T12:00:00Z",
		Grid:          grid,
		TimesIso:      []string{"2025-09-15T12:00:00Z"},
		Fields:        []string{"wind_u", "wind_v"},
		Parts: []Part{
			{Idx: 0, Bytes: 100, Sha256: "aa"},
			{Idx: 1, Bytes: 200, Sha256: "bb"},
		},
		Masks: map[string]string{MaskLand: "mask_land.bin.zst"},
	}
}

func TestManifestSignRoundTrip(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	key := ed25519.NewKeyFromSeed(seed)
	public := key.Public().(ed25519.PublicKey)

	manifest := testManifest(t)
	require.NoError(t, manifest.Sign(key, "test-key"))

	require.NotNil(t, manifest.Signing)
	assert.Equal(t, SigningAlg, manifest.Signing.Alg)
	assert.Equal(t, "test-key", manifest.Signing.KeyId)

	sig, err := base64.StdEncoding.DecodeString(manifest.Signing.SigBase64)
	require.NoError(t, err)
	assert.Len(t, sig, ed25519.SignatureSize)

	msg, err := manifest.SigningMessage()
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(public, msg, sig))

	// the signing object must not leak into the signed message
	assert.NotContains(t, string(msg), "signing")
	assert.NotNil(t, manifest.Signing, "SigningMessage must restore the signature")
}

func TestManifestTamperBreaksSignature(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 7
	key := ed25519.NewKeyFromSeed(seed)
	public := key.Public().(ed25519.PublicKey)

	manifest := testManifest(t)
	require.NoError(t, manifest.Sign(key, DefaultKeyId))

	sig, err := base64.StdEncoding.DecodeString(manifest.Signing.SigBase64)
	require.NoError(t, err)

	manifest.Region = "NATL_051"
	msg, err := manifest.SigningMessage()
	require.NoError(t, err)
	assert.False(t, ed25519.Verify(public, msg, sig))
}

func TestNormalizeCycle(t *testing.T) {
	assert.Equal(t, "2025-09-15T12:00:00Z", NormalizeCycle("2025-09-15T12:00:00Z"))
	assert.Equal(t, "2025-09-15T12:00:00Z", NormalizeCycle("2025-09-15T12:00:00"))
}
