package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizeTags splits raw on commas, trims each name, drops empties and
// removes case-insensitive duplicates. The first-seen casing and the input
// order are kept.
func NormalizeTags(raw string) []string {
	return normalizeNames(strings.Split(raw, ","))
}

// normalizeNames applies the NormalizeTags rules to names that are already
// split.
func normalizeNames(names []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(names))
	for _, n := range names {
		name := strings.TrimSpace(n)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// TagList is a tag payload. It accepts a comma-separated string or an array
// of strings and always holds normalized names. Array elements are taken
// whole, commas included.
type TagList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*t = NormalizeTags(raw)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("tags must be a string or a list of strings")
	}
	*t = normalizeNames(items)
	return nil
}
