package normalize

import (
	"encoding/json"
	"strings"
)

// StripCodeFences removes a surrounding markdown code fence (``` or ```json)
// from service output. Text without a leading fence is returned unchanged.
func StripCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	// drop the info string ("json", "text", ...) on the fence line
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		info := strings.TrimSpace(t[:i])
		if len(info) <= 12 && !strings.ContainsAny(info, "{}[]") {
			t = t[i+1:]
		}
	}
	if j := strings.LastIndex(t, "```"); j >= 0 {
		t = t[:j]
	}
	return strings.TrimSpace(t)
}

// ExtractJSONValue scans the provided string and returns the first complete
// top-level JSON value (object or array) that actually parses. It keeps track
// of whether the scanner is inside a quoted string and ignores structural
// characters appearing within strings or escaped sequences. A balanced block
// that fails to parse is skipped and the scan resumes after it, so prose
// braces (set notation, intervals) before the real payload do not mask it.
func ExtractJSONValue(s string) (string, bool) {
	inString := false
	escaped := false
	start := -1
	var stack []byte
	reset := func() {
		inString, escaped, start, stack = false, false, -1, nil
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			if ch == '\\' {
				escaped = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			if len(stack) == 0 {
				start = i
			}
			if ch == '{' {
				stack = append(stack, '}')
			} else {
				stack = append(stack, ']')
			}
		case '}', ']':
			if len(stack) == 0 {
				continue
			}
			if ch != stack[len(stack)-1] {
				// mismatched closer: not JSON, restart after it
				reset()
				continue
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 && start >= 0 {
				if block := s[start : i+1]; json.Valid([]byte(block)) {
					return block, true
				}
				reset()
			}
		}
	}
	return "", false
}
