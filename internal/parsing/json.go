package parsing

import (
	"strings"
)

// extractJSON pulls the JSON object out of a model response. Models are
// instructed to answer with raw JSON but still occasionally wrap it in
// Markdown fences or prose.
func extractJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	// Drop ```json ... ``` or ``` ... ``` wrappers
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Keep only the outermost object when prose surrounds it
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}

	return s[start : end+1], true
}
