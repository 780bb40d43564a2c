package advisory

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("(?i)^```json\\s*")
	fenceBare  = regexp.MustCompile("(?i)^```\\s*")
	fenceClose = regexp.MustCompile("```$")
)

// ExtractJSON strips markdown fencing from a model reply and, if the
// remainder still does not start with an open brace, cuts out the first
// `{...}` span. The result is ready for json.Unmarshal; parse failures stay
// with the caller.
func ExtractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceBare.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "{") {
		return text
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// Clamp01 forces a confidence value into [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NumberOr returns the decoded number, or fallback when the field is absent
// or not numeric.
func NumberOr(raw json.RawMessage, fallback float64) float64 {
	if len(raw) == 0 {
		return fallback
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	return v
}

// StringOr returns the decoded string, or fallback when the field is absent,
// empty or not a string.
func StringOr(raw json.RawMessage, fallback string) string {
	if len(raw) == 0 {
		return fallback
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// CoerceStringList accepts either a JSON array of strings or a single
// string, mirroring how loosely models follow array instructions.
func CoerceStringList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		if strings.TrimSpace(single) == "" {
			return nil, nil
		}
		return []string{single}, nil
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	default:
		return nil, errors.New("unsupported list format")
	}
}

// CleanList trims entries and drops blanks and duplicates, preserving order.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{})
	for _, item := range items {
		clean := strings.TrimSpace(item)
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
