package unscraper

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EmptyListings is the repair result when nothing can be salvaged.
const EmptyListings = `{"listings": []}`

// RepairJSON extracts a listings object from raw model output. It never
// fails: the result always parses as a JSON object whose "listings" key
// holds an array.
func RepairJSON(raw string) string {
	s, _ := SalvageJSON(raw)
	return s
}

// SalvageJSON is RepairJSON that also reports whether content was salvaged.
// It returns EmptyListings and false when the fallback had to be used.
//
// The candidate is the text between the first '{' and the last '}'. When
// that is not already a valid listings object and does not end in "]}",
// "]}" is appended, which closes output truncated after a complete record.
func SalvageJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return EmptyListings, false
	}

	s := raw[start : end+1]
	if hasListings(s) {
		return s, true
	}
	if !strings.HasSuffix(s, "]}") {
		s = strings.TrimRight(s, ", \t\r\n") + "]}"
		if hasListings(s) {
			return s, true
		}
	}
	return EmptyListings, false
}

func hasListings(s string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return false
	}
	listings, ok := obj["listings"]
	if !ok {
		return false
	}
	return bytes.HasPrefix(bytes.TrimSpace(listings), []byte("["))
}
