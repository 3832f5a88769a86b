package grade

import (
	"strings"

	"github.com/mathsight/grader/constants"
)

// RankHints cleans and bounds a raw hint list: whitespace is trimmed, empty
// entries dropped, duplicates removed case- and whitespace-insensitively
// keeping the first occurrence, and the survivors truncated to MaxHints.
// Relative order is preserved; the source emits hints most-to-least helpful.
// The second return is the first hint, or the sentinel when none survive.
func RankHints(hints []string) ([]string, string) {
	out := make([]string, 0, constants.MaxHints)
	seen := make(map[string]struct{}, len(hints))
	for _, h := range hints {
		t := strings.TrimSpace(h)
		if t == "" {
			continue
		}
		key := dedupeKey(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
		if len(out) == constants.MaxHints {
			break
		}
	}
	if len(out) == 0 {
		return out, constants.NoHintSentinel
	}
	return out, out[0]
}

// dedupeKey folds case and collapses whitespace runs so "Try  X" and "try x"
// collide.
func dedupeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
