package auv

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
)

// PlanHash digests the canonical encoding of (cmd, args): object keys
// sorted, numbers in shortest round-trip form. Two enqueues with the same
// semantic intent hash identically, which is what the descent gate compares
// against the vehicle's locally computed value.
func PlanHash(cmd string, args map[string]any) string {
	var buf bytes.Buffer
	canonicalize(&buf, map[string]any{"cmd": cmd, "args": args})
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// PlanHashRaw hashes a stored args blob. Decoding through float64 is what
// normalizes 10 and 10.0 to the same canonical text.
func PlanHashRaw(cmd string, args []byte) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(args, &m); err != nil {
		return "", err
	}
	return PlanHash(cmd, m), nil
}

func canonicalize(buf *bytes.Buffer, v any) {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case float64:
		buf.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case int:
		buf.WriteString(strconv.Itoa(x))
	case int64:
		buf.WriteString(strconv.FormatInt(x, 10))
	case string:
		buf.WriteString(strconv.Quote(x))
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(k))
			buf.WriteByte(':')
			canonicalize(buf, x[k])
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			canonicalize(buf, e)
		}
		buf.WriteByte(']')
	default:
		// anything else round-trips through encoding/json
		blob, err := json.Marshal(x)
		if err != nil {
			buf.WriteString("null")
			return
		}
		var decoded any
		if err := json.Unmarshal(blob, &decoded); err != nil {
			buf.WriteString("null")
			return
		}
		canonicalize(buf, decoded)
	}
}
