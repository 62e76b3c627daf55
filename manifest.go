package seapack

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ManifestSchemaVersion is bumped on any incompatible manifest change.
const ManifestSchemaVersion = 1

// ManifestFilename is the fixed manifest name within a pack directory.
const ManifestFilename = "manifest.json"

// SigningAlg is the only signature algorithm packs carry.
const SigningAlg = "ed25519"

// Part records one compressed artifact; its position in the field list, the
// compressed size in bytes and the SHA-256 of the compressed file.
type Part struct {
	Idx    int    `json:"idx"`
	Bytes  int    `json:"bytes"`
	Sha256 string `json:"sha256"`
}

// Signing carries the detached manifest signature. The signature covers the
// canonical JSON of the manifest with this object removed.
type Signing struct {
	Alg       string `json:"alg"`
	KeyId     string `json:"key_id"`
	SigBase64 string `json:"sig_base64"`
}

// Manifest is the JSON index binding a pack together; grid, field order,
// part hashes, mask filenames and the signature.
type Manifest struct {
	SchemaVersion int               `json:"schema_version"`
	Region        string            `json:"region"`
	CycleIso      string            `json:"cycle_iso"`
	Grid          Grid              `json:"grid"`
	TimesIso      []string          `json:"times_iso"`
	Fields        []string          `json:"fields"`
	Parts         []Part            `json:"parts"`
	Masks         map[string]string `json:"masks"`
	Signing       *Signing          `json:"signing,omitempty"`
}

// NormalizeCycle appends the UTC designator when absent; upstream cycle
// strings are inconsistent about the trailing Z.
func NormalizeCycle(cycle string) string {
	if strings.HasSuffix(cycle, "Z") {
		return cycle
	}
	return cycle + "Z"
}

// SigningMessage produces the canonical byte string the signature covers;
// the manifest without its signing object, keys sorted, compact separators.
func (m *Manifest) SigningMessage() ([]byte, error) {
	signing := m.Signing
	m.Signing = nil
	msg, err := CanonicalJson(m)
	m.Signing = signing

	return msg, err
}

// Sign computes the Ed25519 signature over the canonical form and attaches
// the signing object.
func (m *Manifest) Sign(key ed25519.PrivateKey, key_id string) error {
	m.Signing = nil
	msg, err := m.SigningMessage()
	if err != nil {
		return err
	}

	sig := ed25519.Sign(key, msg)
	m.Signing = &Signing{
		Alg:       SigningAlg,
		KeyId:     key_id,
		SigBase64: base64.StdEncoding.EncodeToString(sig),
	}

	return nil
}

// WriteManifest pretty-prints the manifest into the pack directory. The
// indented form is for human inspection; verification always goes through
// the canonical form.
func WriteManifest(dir string, m *Manifest) error {
	jsn, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Join(ErrWrite, err)
	}

	err = os.WriteFile(filepath.Join(dir, ManifestFilename), append(jsn, '\n'), 0o644)
	if err != nil {
		return errors.Join(ErrWrite, err)
	}

	return nil
}
