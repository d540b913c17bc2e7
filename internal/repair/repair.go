// Package repair coerces a free-text model completion into valid structured
// JSON. Generation services have an implicit maximum output length that can
// cut a JSON array off mid-element; this recovery assumes the last complete
// object ends at the final closing brace and discards anything after it.
package repair

import (
	"encoding/json"
	"strings"

	"github.com/argus-agency/dossier/internal/fault"
)

// Array extracts the largest well-formed JSON array prefix from raw.
//
// The heuristic: take the substring from the first '[' through the last '}'
// at or after it, appending ']' when the array was left unclosed. No '[' at
// all, or a last '}' before the first '[', is the defined empty-array
// fallback; callers cannot distinguish "no brackets found" from "empty
// extraction", and neither is an error.
//
// repaired reports whether a closing bracket had to be appended, which can
// mean a partially-valid trailing element was dropped. All parse failures
// come back as typed faults; this function never panics.
func Array(raw string) (items []any, repaired bool, err error) {
	start := strings.Index(raw, "[")
	if start == -1 {
		return []any{}, false, nil
	}
	end := strings.LastIndex(raw, "}")
	if end < start {
		return []any{}, false, nil
	}

	// The slice through the last '}' always drops the closing bracket, so
	// one is appended either way. Whether the original had one after that
	// brace is what distinguishes a clean response from a truncated one.
	trimmed := raw[start:end+1] + "]"
	rest := strings.TrimLeft(raw[end+1:], " \t\r\n")
	if !strings.HasPrefix(rest, "]") {
		repaired = true
	}

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return nil, repaired, fault.Wrap(fault.KindMalformedJSON, err, "recovered text is not valid JSON")
	}
	arr, ok := value.([]any)
	if !ok {
		return nil, repaired, fault.New(fault.KindNotAnArray, "recovered JSON top level is %T, not an array", value)
	}
	return arr, repaired, nil
}
