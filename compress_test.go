package seapack

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB, 0xCD, 0x00, 0x01}, 4096)

	compressed, sum, err := Compress(raw, DefaultCompressionLevel)
	require.NoError(t, err)
	assert.Equal(t, Sha256Hex(compressed), sum)
	assert.Less(t, len(compressed), len(raw))

	back, err := Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, raw, back)
}

func TestCompressDeterministic(t *testing.T) {
	raw := f32leBytes(synthPlane([]float64{0, 1, 2}, []float64{0, 1, 2, 3}, 5.0, 3.0))

	a, sum_a, err := Compress(raw, DefaultCompressionLevel)
	require.NoError(t, err)
	b, sum_b, err := Compress(raw, DefaultCompressionLevel)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, sum_a, sum_b)
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := Decompress([]byte("definitely not zstandard"))
	assert.ErrorIs(t, err, ErrDecompress)
}

func TestF32RoundTrip(t *testing.T) {
	values := []float32{0, 1.5, -2.25, 3e10, -0.0}
	buf := f32leBytes(values)
	require.Len(t, buf, 4*len(values))
	assert.Equal(t, values, f32leValues(buf))
}
