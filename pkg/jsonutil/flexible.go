// Package jsonutil coerces loosely typed JSON values from document
// extraction output. Extractors routinely emit numbers for year fields and
// booleans for flags, so the ingestion DTOs decode every string field
// through AsString instead of directly into a string.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// AsString returns the string form of a raw JSON value. Strings decode as
// themselves, numbers and booleans as their literal text, null and absent
// values as "". Objects and arrays fall back to their raw text so nothing
// is silently dropped.
func AsString(raw json.RawMessage) string {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}

	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			return strconv.FormatBool(b)
		}
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil {
			return n.String()
		}
	}

	return string(v)
}
