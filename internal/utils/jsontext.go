package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeModelJSON extracts the outermost JSON object from raw model output
// and decodes it into target. Models occasionally wrap the payload in code
// fences or prose; everything outside the outermost braces is dropped.
func DecodeModelJSON(raw string, target any) error {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	if err := json.Unmarshal([]byte(clean), target); err != nil {
		return fmt.Errorf("failed to parse model output: %w", err)
	}
	return nil
}

// DedupeStrings returns the input with empties removed and duplicates
// collapsed case-insensitively, preserving first-seen order.
func DedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
