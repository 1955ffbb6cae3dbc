package llm

import "strings"

// StripFences returns the JSON document inside a model reply, dropping a
// markdown code fence (with or without a language tag) or any prose before
// the first brace or bracket.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "```"); ok {
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
			rest = rest[nl+1:]
		}
		rest, _, _ = strings.Cut(rest, "```")
		return strings.TrimSpace(rest)
	}
	if start := strings.IndexAny(text, "{["); start > 0 {
		return text[start:]
	}
	return text
}
