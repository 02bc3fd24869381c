package llm

import "strings"

// CleanJSONBlock removes markdown code fence wrappers from a model reply.
// Fences labeled "json" in either letter case are tolerated; surrounding
// whitespace is trimmed before and after stripping.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = strings.TrimPrefix(text, "```json")
	case strings.HasPrefix(text, "```JSON"):
		text = strings.TrimPrefix(text, "```JSON")
	case strings.HasPrefix(text, "```"):
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
