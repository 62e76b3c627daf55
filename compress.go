package seapack

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/klauspost/compress/zstd"
)

// DefaultCompressionLevel matches the upstream pack producers.
const DefaultCompressionLevel = 3

// Compress block-compresses a raw byte buffer with zstandard and returns the
// compressed bytes together with their SHA-256 hex digest. The encoder runs
// single threaded so the same input always yields the same output.
func Compress(data []byte, level int) ([]byte, string, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, "", errors.Join(ErrCompress, err)
	}

	compressed := enc.EncodeAll(data, nil)
	err = enc.Close()
	if err != nil {
		return nil, "", errors.Join(ErrCompress, err)
	}

	return compressed, Sha256Hex(compressed), nil
}

// Decompress is the inverse of Compress.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, errors.Join(ErrDecompress, err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Join(ErrDecompress, err)
	}

	return raw, nil
}

// Sha256Hex computes the lowercase hex SHA-256 digest of a byte buffer.
func Sha256Hex(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
