package seapack

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// FieldStats carries the decompression diagnostics of one field part.
type FieldStats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

// VerifyResult is the outcome of verifying a pack directory. Pass requires
// signature, parts and masks to all check out; the field statistics are
// diagnostics only.
type VerifyResult struct {
	Manifest    *Manifest
	SignatureOK bool
	PartsOK     bool
	MasksOK     bool
	FieldStats  map[string]FieldStats
	Problems    []error
}

// Pass reports the overall verification verdict.
func (r *VerifyResult) Pass() bool {
	return r.SignatureOK && r.PartsOK && r.MasksOK
}

// VerifyPack checks a pack directory: manifest presence, the Ed25519
// signature over the canonical manifest form, every part's size and SHA-256,
// every mask's value domain, and decompression of the field data. When
// public_key is nil only the signature format is checked; SignatureOK then
// reflects that check alone and a warning is logged, the result itself does
// not record that the signature went unverified. Each failed check is logged
// and recorded; only a
// missing or unreadable manifest aborts.
func VerifyPack(pack_dir string, public_key ed25519.PublicKey) (*VerifyResult, error) {
	manifest_path := filepath.Join(pack_dir, ManifestFilename)
	raw, err := os.ReadFile(manifest_path)
	if err != nil {
		return nil, errors.Join(ErrMissingManifest, err)
	}

	var manifest Manifest
	err = json.Unmarshal(raw, &manifest)
	if err != nil {
		return nil, errors.Join(ErrMissingManifest, err)
	}

	log.Printf("Loaded manifest for region %s, cycle %s", manifest.Region, manifest.CycleIso)
	log.Printf("Grid %s; %d fields, %d parts, %d masks",
		manifest.Grid.Spec(), len(manifest.Fields), len(manifest.Parts), len(manifest.Masks))

	result := &VerifyResult{
		Manifest:   &manifest,
		FieldStats: make(map[string]FieldStats),
	}

	result.SignatureOK = verifySignature(raw, public_key, result)
	result.PartsOK = verifyParts(&manifest, pack_dir, result)
	result.MasksOK = verifyMasks(&manifest, pack_dir, result)
	verifyFieldData(&manifest, pack_dir, result)

	return result, nil
}

// verifySignature re-canonicalises the on-disk manifest with the signing
// object stripped and checks the Ed25519 signature against it.
func verifySignature(raw []byte, public_key ed25519.PublicKey, result *VerifyResult) bool {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var tree map[string]any
	err := decoder.Decode(&tree)
	if err != nil {
		result.Problems = append(result.Problems, errors.Join(ErrBadSignature, err))
		log.Println("❌ Signature: manifest not parseable")
		return false
	}

	signing, ok := tree["signing"].(map[string]any)
	if !ok {
		result.Problems = append(result.Problems, errors.Join(ErrBadSignature, errors.New("no signing object")))
		log.Println("❌ Signature: no signing information in manifest")
		return false
	}
	delete(tree, "signing")

	alg, _ := signing["alg"].(string)
	if alg != SigningAlg {
		result.Problems = append(result.Problems, errors.Join(ErrBadSignature, fmt.Errorf("algorithm %q", alg)))
		log.Printf("❌ Signature: unsupported algorithm %q", alg)
		return false
	}

	sig_b64, _ := signing["sig_base64"].(string)
	sig, err := base64.StdEncoding.DecodeString(sig_b64)
	if err != nil {
		result.Problems = append(result.Problems, errors.Join(ErrBadSignature, err))
		log.Println("❌ Signature: sig_base64 does not decode")
		return false
	}

	if public_key == nil {
		log.Printf("⚠️ Signature: no public key provided; format verified only (%d bytes)", len(sig))
		return true
	}

	msg, err := CanonicalJson(tree)
	if err != nil {
		result.Problems = append(result.Problems, errors.Join(ErrBadSignature, err))
		log.Println("❌ Signature: canonicalisation failed")
		return false
	}

	if len(sig) != ed25519.SignatureSize || !ed25519.Verify(public_key, msg, sig) {
		result.Problems = append(result.Problems, ErrBadSignature)
		log.Printf("❌ Signature: verification failed (key_id %v)", signing["key_id"])
		return false
	}

	log.Printf("✅ Signature verified (key_id %v)", signing["key_id"])
	return true
}

// verifyParts checks every part entry against its on-disk file; existence,
// size, and the SHA-256 of the compressed bytes.
func verifyParts(manifest *Manifest, pack_dir string, result *VerifyResult) bool {
	if len(manifest.Parts) == 0 {
		result.Problems = append(result.Problems, errors.Join(ErrPartCorrupt, errors.New("no parts in manifest")))
		log.Println("❌ Parts: manifest lists none")
		return false
	}

	ok := true
	for i, part := range manifest.Parts {
		idx := part.Idx
		if idx < 0 || idx >= len(manifest.Fields) {
			result.Problems = append(result.Problems, errors.Join(ErrPartCorrupt, fmt.Errorf("part %d: idx %d out of range", i, idx)))
			log.Printf("❌ Part %d: idx out of range", idx)
			ok = false
			continue
		}

		filename := manifest.Fields[idx] + partExt
		data, err := os.ReadFile(filepath.Join(pack_dir, filename))
		if err != nil {
			result.Problems = append(result.Problems, errors.Join(ErrPartCorrupt, fmt.Errorf("part %d (%s): %w", idx, filename, err)))
			log.Printf("❌ Part %d (%s): file not readable", idx, filename)
			ok = false
			continue
		}

		if len(data) != part.Bytes {
			result.Problems = append(result.Problems, errors.Join(ErrPartCorrupt,
				fmt.Errorf("part %d (%s): size %d, manifest says %d", idx, filename, len(data), part.Bytes)))
			log.Printf("❌ Part %d (%s): size mismatch (%d != %d)", idx, filename, len(data), part.Bytes)
			ok = false
			continue
		}

		sum := Sha256Hex(data)
		if sum != part.Sha256 {
			result.Problems = append(result.Problems, errors.Join(ErrPartCorrupt,
				fmt.Errorf("part %d (%s): sha256 mismatch", idx, filename)))
			log.Printf("❌ Part %d (%s): sha256 mismatch", idx, filename)
			ok = false
			continue
		}

		log.Printf("✅ Part %d (%s): %d bytes, sha256 verified", idx, filename, len(data))
	}

	return ok
}

// verifyMasks decompresses every mask and asserts the uint8 value domain.
func verifyMasks(manifest *Manifest, pack_dir string, result *VerifyResult) bool {
	ok := true

	// deterministic check order
	for _, kind := range MaskKinds {
		filename, present := manifest.Masks[kind]
		if !present {
			continue
		}

		data, err := os.ReadFile(filepath.Join(pack_dir, filename))
		if err != nil {
			result.Problems = append(result.Problems, errors.Join(ErrBadMask, fmt.Errorf("mask %s (%s): %w", kind, filename, err)))
			log.Printf("❌ Mask %s (%s): file not readable", kind, filename)
			ok = false
			continue
		}

		mask, err := Decompress(data)
		if err != nil {
			result.Problems = append(result.Problems, errors.Join(ErrBadMask, fmt.Errorf("mask %s (%s): %w", kind, filename, err)))
			log.Printf("❌ Mask %s (%s): decompression failed", kind, filename)
			ok = false
			continue
		}

		bad := false
		for _, v := range mask {
			if v > 1 {
				bad = true
				break
			}
		}
		if bad {
			result.Problems = append(result.Problems, errors.Join(ErrBadMask, fmt.Errorf("mask %s: values outside {0,1}", kind)))
			log.Printf("❌ Mask %s (%s): values outside {0,1}", kind, filename)
			ok = false
			continue
		}

		set := lo.CountBy(mask, func(v uint8) bool { return v == 1 })
		log.Printf("✅ Mask %s (%s): %d cells, %d set", kind, filename, len(mask), set)
	}

	return ok
}

// verifyFieldData decompresses every non-mask part and records min/max/mean
// diagnostics. Failures are logged but do not affect the verdict.
func verifyFieldData(manifest *Manifest, pack_dir string, result *VerifyResult) {
	for _, part := range manifest.Parts {
		if part.Idx < 0 || part.Idx >= len(manifest.Fields) {
			continue
		}
		name := manifest.Fields[part.Idx]
		if strings.HasPrefix(name, "mask_") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(pack_dir, name+partExt))
		if err != nil {
			log.Printf("❌ Field %s: file not readable", name)
			continue
		}

		raw, err := Decompress(data)
		if err != nil {
			log.Printf("❌ Field %s: decompression failed", name)
			continue
		}

		values := f32leValues(raw)
		if len(values) == 0 {
			log.Printf("❌ Field %s: empty payload", name)
			continue
		}

		stats := FieldStats{Count: len(values), Min: float64(values[0]), Max: float64(values[0])}
		sum := 0.0
		for _, v := range values {
			f := float64(v)
			if f < stats.Min {
				stats.Min = f
			}
			if f > stats.Max {
				stats.Max = f
			}
			sum += f
		}
		stats.Mean = sum / float64(len(values))
		result.FieldStats[name] = stats

		log.Printf("✅ Field %s: %d values, range [%.3f, %.3f], mean %.3f",
			name, stats.Count, stats.Min, stats.Max, stats.Mean)
	}
}
