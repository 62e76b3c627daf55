package seapack

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// CanonicalJson serialises a value into the canonical signing form; object
// keys sorted lexicographically at every level and compact separators, no
// whitespace. The value is first round-tripped through the standard encoder
// with numbers kept as their literal tokens, so a manifest parsed back from
// the pretty-printed on-disk file canonicalises to the identical bytes that
// were signed.
func CanonicalJson(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrCanonical, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var tree any
	err = decoder.Decode(&tree)
	if err != nil {
		return nil, errors.Join(ErrCanonical, err)
	}

	var buf bytes.Buffer
	err = writeCanonical(&buf, tree)
	if err != nil {
		return nil, errors.Join(ErrCanonical, err)
	}

	return buf.Bytes(), nil
}

// writeCanonical emits one node of the decoded JSON tree.
func writeCanonical(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(t.String())
	case string:
		enc, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(enc)
	case []any:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			err := writeCanonical(buf, item)
			if err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := lo.Keys(t)
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			enc, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(enc)
			buf.WriteByte(':')
			err = writeCanonical(buf, t[key])
			if err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unexpected node type %T", v)
	}

	return nil
}
