package intent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeObject parses the first JSON object found in raw into v. Models wrap
// their JSON in markdown fences, prefix it with commentary, or emit invalid
// escape sequences; all of these are recovered before giving up.
func decodeObject(raw string, v any) error {
	raw = strings.TrimSpace(raw)

	// Strip markdown code fences if present.
	if strings.HasPrefix(raw, "```") {
		lines := strings.Split(raw, "\n")
		if len(lines) >= 3 && strings.HasPrefix(lines[len(lines)-1], "```") {
			raw = strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	// Fast path: the whole content is the object.
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}

	// Find object boundaries within surrounding text.
	start, end := findJSONBounds(raw)
	if start < 0 {
		return fmt.Errorf("no JSON object in response")
	}
	candidate := raw[start:end]
	if err := json.Unmarshal([]byte(candidate), v); err == nil {
		return nil
	}

	// Last resort: repair invalid escape sequences.
	if err := json.Unmarshal([]byte(sanitizeJSONEscapes(candidate)), v); err != nil {
		return fmt.Errorf("decode response object: %w", err)
	}
	return nil
}

// findJSONBounds locates the first top-level JSON object in s. Returns the
// start index and end+1 index, or (-1, -1) if not found.
func findJSONBounds(s string) (int, int) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return -1, -1
	}

	depth := 0
	inStr := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inStr {
			if ch == '\\' {
				i++ // skip escaped character
				continue
			}
			if ch == '"' {
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return start, i + 1
			}
		}
	}
	return -1, -1
}

// sanitizeJSONEscapes fixes invalid JSON escape sequences produced by some
// models. Valid escapes: \", \\, \/, \b, \f, \n, \r, \t, \uXXXX. Invalid ones
// are corrected by dropping the backslash.
func sanitizeJSONEscapes(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	inString := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' && (i == 0 || s[i-1] != '\\') {
			inString = !inString
			buf.WriteByte(ch)
			continue
		}
		if inString && ch == '\\' && i+1 < len(s) {
			next := s[i+1]
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				buf.WriteByte(ch)
			default:
				continue
			}
		} else {
			buf.WriteByte(ch)
		}
	}
	return buf.String()
}
