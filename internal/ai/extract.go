package ai

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ExtractObject recovers a JSON object from model output that may be wrapped
// in markdown fences or surrounded by prose. It never fails: anything that
// cannot be parsed degrades to an empty map, which every consumer treats as
// a valid "no structured data" outcome.
func ExtractObject(raw string) map[string]any {
	cleaned := stripFences(raw)

	if obj, ok := parseObject(cleaned); ok {
		return obj
	}

	// Fall back to the widest {...} region. Greedy on purpose: the object we
	// want usually spans the whole tail of the output.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if obj, ok := parseObject(cleaned[start : end+1]); ok {
			return obj
		}
	}

	return map[string]any{}
}

func parseObject(s string) (map[string]any, bool) {
	var value map[string]any
	if err := json.Unmarshal([]byte(s), &value); err != nil || value == nil {
		return nil, false
	}
	return value, true
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// StringList coerces a value into at most max non-empty trimmed strings.
// Anything that is not a list of strings contributes nothing.
func StringList(value any, max int) []string {
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if len(out) >= max {
			break
		}
		if s, ok := item.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

// StringMap coerces a value into at most max trimmed, non-empty string
// entries. Non-string keys or values are skipped, never an error.
func StringMap(value any, max int) map[string]string {
	obj, ok := value.(map[string]any)
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string)
	for k, v := range obj {
		if len(out) >= max {
			break
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(s)
		if key != "" && val != "" {
			out[key] = val
		}
	}
	return out
}

// FloatMap coerces a value into at most max numeric entries. Numbers may
// arrive as JSON numbers or as numeric strings; everything else is skipped.
func FloatMap(value any, max int) map[string]float64 {
	obj, ok := value.(map[string]any)
	if !ok {
		return map[string]float64{}
	}
	out := make(map[string]float64)
	for k, v := range obj {
		if len(out) >= max {
			break
		}
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}

		switch n := v.(type) {
		case float64:
			out[key] = n
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				out[key] = parsed
			}
		}
	}
	return out
}
