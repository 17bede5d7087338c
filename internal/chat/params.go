package chat

import (
	"strconv"
	"strings"
	"time"
)

// Payload field access. Model payloads are JSON-decoded maps, so numbers
// arrive as float64 and everything else may arrive as the wrong type;
// these helpers coerce leniently and report absence cleanly.

func stringField(data map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := lookupKey(data, key)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

func floatField(data map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := lookupKey(data, key)
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func timeField(data map[string]any, keys ...string) (*time.Time, bool) {
	s, ok := stringField(data, keys...)
	if !ok {
		return nil, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// lookupKey matches case-insensitively and tolerates snake_case variants of
// a camelCase key, since models alternate freely between the two.
func lookupKey(data map[string]any, key string) (any, bool) {
	if v, ok := data[key]; ok {
		return v, true
	}
	want := canonicalKey(key)
	for k, v := range data {
		if canonicalKey(k) == want {
			return v, true
		}
	}
	return nil, false
}

func canonicalKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(k, "_", ""))
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
