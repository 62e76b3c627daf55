package seapack

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultKeyId names the signing key in the manifest when the operator does
// not provide one.
const DefaultKeyId = "pack-key-1"

// envKeyPrefix selects environment delivery of the signing seed,
// e.g. "env:ED25519_PRIV".
const envKeyPrefix = "env:"

// LoadSigningKey resolves a signing key argument into an Ed25519 private key.
// "env:NAME" reads a base64 encoded 32 byte seed from the environment; any
// other value is a path to a file holding the raw seed bytes.
// The key is a value passed through the pipeline; callers should ZeroizeSeed
// once the pack is written.
func LoadSigningKey(spec string) (ed25519.PrivateKey, error) {
	var (
		seed []byte
		err  error
	)

	if strings.HasPrefix(spec, envKeyPrefix) {
		name := spec[len(envKeyPrefix):]
		val, ok := os.LookupEnv(name)
		if !ok || val == "" {
			return nil, errors.Join(ErrKeyLoad, fmt.Errorf("environment variable %s not set", name))
		}
		seed, err = base64.StdEncoding.DecodeString(val)
		if err != nil {
			return nil, errors.Join(ErrKeyLoad, err)
		}
	} else {
		seed, err = os.ReadFile(spec)
		if err != nil {
			return nil, errors.Join(ErrKeyLoad, err)
		}
	}

	if len(seed) != ed25519.SeedSize {
		ZeroizeSeed(seed)
		return nil, errors.Join(ErrKeyLoad, fmt.Errorf("seed is %d bytes, want %d", len(seed), ed25519.SeedSize))
	}

	key := ed25519.NewKeyFromSeed(seed)
	ZeroizeSeed(seed)

	return key, nil
}

// ParsePublicKey decodes a base64 encoded Ed25519 public key.
func ParsePublicKey(b64 string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, errors.Join(ErrKeyLoad, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.Join(ErrKeyLoad, fmt.Errorf("public key is %d bytes, want %d", len(raw), ed25519.PublicKeySize))
	}

	return ed25519.PublicKey(raw), nil
}

// GenerateSigningSeed creates a fresh random seed and returns the base64
// forms of the seed and the derived public key.
func GenerateSigningSeed() (seed_b64, public_b64 string, err error) {
	seed := make([]byte, ed25519.SeedSize)
	_, err = rand.Read(seed)
	if err != nil {
		return "", "", errors.Join(ErrKeyLoad, err)
	}

	key := ed25519.NewKeyFromSeed(seed)
	public := key.Public().(ed25519.PublicKey)

	seed_b64 = base64.StdEncoding.EncodeToString(seed)
	public_b64 = base64.StdEncoding.EncodeToString(public)
	ZeroizeSeed(seed)

	return seed_b64, public_b64, nil
}

// ZeroizeSeed overwrites key material in place.
func ZeroizeSeed(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
