package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ClampScore coerces a prospective score of any decoded type into [0,100].
// Non-numeric values become 0. This is the single point where the score
// range invariant is enforced; nothing downstream re-clamps.
func ClampScore(v any) float64 {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// coerceString renders a scalar value as a trimmed string. Containers and
// null yield "" so no raw structure leaks into a string field.
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// coerceStringSlice renders a value as a list of strings. A scalar becomes a
// single-element list; container elements are skipped.
func coerceStringSlice(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			switch el.(type) {
			case map[string]any, []any, nil:
				continue
			}
			out = append(out, coerceString(el))
		}
		return out
	case nil:
		return []string{}
	default:
		if s := coerceString(v); s != "" {
			return []string{s}
		}
		return []string{}
	}
}
