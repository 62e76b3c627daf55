package seapack

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond"
)

// partExt is the filename suffix of every compressed pack artifact.
const partExt = ".bin.zst"

// PackSpec gathers everything a single build invocation produces a pack
// from. Fields keep their declared ingestion order; that order fixes the
// part indices and, together with the pinned compression level, makes the
// output byte-identical between runs.
type PackSpec struct {
	Region   string
	CycleIso string
	Grid     Grid
	Fields   []Field
	Masks    map[string][]uint8
	Key      ed25519.PrivateKey
	KeyId    string
	Level    int
}

// compressedPart is the outcome of compressing one artifact.
type compressedPart struct {
	data   []byte
	sha256 string
	err    error
}

// WritePack compresses and persists every field and mask, then assembles,
// signs and writes the manifest. Field compression is spread over a worker
// pool; results are collected back in declared order so the pack is
// bit-identical to a sequential build.
func WritePack(spec *PackSpec, out_dir string) (*Manifest, error) {
	err := os.MkdirAll(out_dir, 0o755)
	if err != nil {
		return nil, errors.Join(ErrWrite, err)
	}

	level := spec.Level
	if level == 0 {
		level = DefaultCompressionLevel
	}

	cells := spec.Grid.Cells()
	for i := range spec.Fields {
		if len(spec.Fields[i].Values) != cells {
			return nil, errors.Join(ErrWrite,
				fmt.Errorf("field %s has %d cells, grid wants %d", spec.Fields[i].Name, len(spec.Fields[i].Values), cells))
		}
	}

	// compress fields concurrently, keep declared order
	n := runtime.NumCPU()
	pool := pond.New(n, 0, pond.MinWorkers(n))
	results := make([]compressedPart, len(spec.Fields))
	for i := range spec.Fields {
		i := i
		field := &spec.Fields[i]
		pool.Submit(func() {
			data, sum, err := Compress(field.Bytes(), level)
			results[i] = compressedPart{data: data, sha256: sum, err: err}
		})
	}
	pool.StopAndWait()

	parts := make([]Part, 0, len(spec.Fields))
	fields := make([]string, 0, len(spec.Fields))
	for i := range spec.Fields {
		res := &results[i]
		if res.err != nil {
			return nil, res.err
		}

		name := spec.Fields[i].Name
		filename := name + partExt
		err = os.WriteFile(filepath.Join(out_dir, filename), res.data, 0o644)
		if err != nil {
			return nil, errors.Join(ErrWrite, err)
		}

		fields = append(fields, name)
		parts = append(parts, Part{Idx: len(parts), Bytes: len(res.data), Sha256: res.sha256})
		log.Printf("Wrote %s: %d bytes, sha256 %s", filename, len(res.data), res.sha256[:16])
	}

	// masks follow in their fixed kind order
	mask_files := make(map[string]string, len(spec.Masks))
	for _, kind := range MaskKinds {
		mask, ok := spec.Masks[kind]
		if !ok {
			continue
		}
		if len(mask) != cells {
			return nil, errors.Join(ErrWrite, fmt.Errorf("mask %s has %d cells, grid wants %d", kind, len(mask), cells))
		}

		data, sum, err := Compress(mask, level)
		if err != nil {
			return nil, err
		}

		filename := "mask_" + kind + partExt
		err = os.WriteFile(filepath.Join(out_dir, filename), data, 0o644)
		if err != nil {
			return nil, errors.Join(ErrWrite, err)
		}

		mask_files[kind] = filename
		log.Printf("Wrote %s: %d bytes, sha256 %s", filename, len(data), sum[:16])
	}

	cycle := NormalizeCycle(spec.CycleIso)
	manifest := &Manifest{
		SchemaVersion: ManifestSchemaVersion,
		Region:        spec.Region,
		CycleIso:      cycle,
		Grid:          spec.Grid,
		TimesIso:      []string{cycle},
		Fields:        fields,
		Parts:         parts,
		Masks:         mask_files,
	}

	key_id := spec.KeyId
	if key_id == "" {
		key_id = DefaultKeyId
	}
	err = manifest.Sign(spec.Key, key_id)
	if err != nil {
		return nil, err
	}

	err = WriteManifest(out_dir, manifest)
	if err != nil {
		return nil, err
	}
	log.Printf("Wrote %s: %d parts, %d masks", ManifestFilename, len(parts), len(mask_files))

	return manifest, nil
}

// f32leBytes packs a float32 slice tightly, little-endian.
func f32leBytes(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}

	return buf
}

// f32leValues is the inverse of f32leBytes.
func f32leValues(buf []byte) []float32 {
	values := make([]float32, len(buf)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}

	return values
}
