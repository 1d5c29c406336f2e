package cloudshift

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Fingerprint derives the cache key for a translation request: the SHA-256
// of the canonical form of the block plus the source provider, target
// provider and model identifier. Identical logical inputs always produce the
// identical key regardless of field insertion order or number formatting;
// changing the model or the translation direction changes the key.
func Fingerprint(block Block, sourceProvider, targetProvider, modelID string) string {
	var buf bytes.Buffer
	buf.WriteString(`{"block":`)
	writeCanonical(&buf, map[string]any(block))
	buf.WriteString(`,"model_id":`)
	writeCanonicalString(&buf, modelID)
	buf.WriteString(`,"source_provider":`)
	writeCanonicalString(&buf, sourceProvider)
	buf.WriteString(`,"target_provider":`)
	writeCanonicalString(&buf, targetProvider)
	buf.WriteByte('}')

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON renders a block in its canonical form: mapping keys
// recursively sorted, string scalars trimmed, numbers in minimal notation.
// Two semantically identical documents render identically.
func CanonicalJSON(block Block) []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, map[string]any(block))
	return buf.Bytes()
}

func writeCanonical(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		writeCanonicalString(buf, val)
	case json.Number:
		writeCanonicalNumber(buf, val.String())
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(val, 10))
	case float32:
		writeCanonicalFloat(buf, float64(val))
	case float64:
		writeCanonicalFloat(buf, val)
	case Block:
		writeCanonical(buf, map[string]any(val))
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			writeCanonical(buf, val[k])
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, item)
		}
		buf.WriteByte(']')
	default:
		// Uncommon scalar types fall back to encoding/json.
		raw, err := json.Marshal(val)
		if err != nil {
			buf.WriteString(strconv.Quote("!unencodable"))
			return
		}
		buf.Write(raw)
	}
}

// writeCanonicalString trims surrounding whitespace so formatting-only
// differences do not change the fingerprint.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	raw, _ := json.Marshal(strings.TrimSpace(s))
	buf.Write(raw)
}

// writeCanonicalFloat renders integral floats without a fractional part so
// that 4 and 4.0 fingerprint identically. YAML and JSON decoders disagree
// about which one they produce.
func writeCanonicalFloat(buf *bytes.Buffer, f float64) {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		buf.WriteString(strconv.FormatInt(int64(f), 10))
		return
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

func writeCanonicalNumber(buf *bytes.Buffer, s string) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		buf.WriteString(strconv.FormatInt(i, 10))
		return
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		writeCanonicalFloat(buf, f)
		return
	}
	writeCanonicalString(buf, s)
}
