package sync

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Extract resolves a dotted field path against a call record. It returns the
// scalar at the path coerced to a string, with ok=false as soon as the walk
// hits a missing key or a non-object intermediate. Numeric and boolean leaves
// coerce to "1"/"false" style strings and count as present; a nil or
// non-scalar leaf counts as absent. The walk never panics on malformed
// records.
func Extract(record map[string]any, path string) (string, bool) {
	var current any = record
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = obj[key]
		if !ok {
			return "", false
		}
	}

	switch v := current.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}
