package pipeline

import "strings"

// stripCodeFences removes a markdown code fence wrapper, with or
// without a language tag, leaving the inner text.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 {
		// drop the language tag line (```json, ```JSON, ```javascript)
		first := strings.TrimSpace(s[:idx])
		if isFenceTag(first) {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// isFenceTag reports whether s is a bare language tag rather than
// content sharing the fence's opening line.
func isFenceTag(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// extractJSONObject returns the substring from the first '{' to the
// last '}' in s. External services wrap their JSON in prose; this cuts
// the wrapper away without attempting to parse the prose.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// extractJSONArray returns the substring from the first '[' to the
// last ']' in s.
func extractJSONArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
