package render

import "strings"

// Fence delimits code segments in a body.
const Fence = "```"

// DefaultFallbackLanguage is used when a fence does not declare a language.
const DefaultFallbackLanguage = "javascript"

// Segment is one piece of a body between fences.
type Segment struct {
	Code bool
	Text string
}

// SplitFences splits body on Fence. Odd-indexed pieces are code and even-indexed
// pieces are prose. The rule is purely positional, so an unterminated fence turns
// everything after it into code.
func SplitFences(body string) []Segment {
	parts := strings.Split(body, Fence)
	segs := make([]Segment, len(parts))
	for i, p := range parts {
		segs[i] = Segment{Code: i%2 == 1, Text: p}
	}
	return segs
}

// parseCode reads the language tag from the first line of a code segment and
// keeps the remaining lines verbatim.
func parseCode(text, fallback string) CodeBlock {
	lang, code, _ := strings.Cut(text, "\n")
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = fallback
	}
	return CodeBlock{Language: lang, Code: code}
}
