package render

import "strings"

// Rule classifies a trimmed prose chunk. Rules are evaluated in order and the
// first match builds the block.
type Rule struct {
	Name  string
	Match func(chunk string) bool
	Build func(chunk string) Block
}

var rules = []Rule{
	{Name: "heading3", Match: hasPrefix("### "), Build: heading(3, "### ")},
	{Name: "heading2", Match: hasPrefix("## "), Build: heading(2, "## ")},
	{Name: "heading1", Match: hasPrefix("# "), Build: heading(1, "# ")},
	{Name: "list", Match: hasListLine, Build: buildList},
	{Name: "blockquote", Match: hasPrefix("> "), Build: buildBlockquote},
	{Name: "paragraph", Match: func(string) bool { return true }, Build: buildParagraph},
}

// Rules returns a copy of the classification table in priority order.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Classify returns the block built by the first matching rule. The last rule
// matches everything, so a block is always produced.
func Classify(chunk string) Block {
	for _, r := range rules {
		if r.Match(chunk) {
			return r.Build(chunk)
		}
	}
	return buildParagraph(chunk)
}

func hasPrefix(p string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, p) }
}

func heading(level int, prefix string) func(string) Block {
	return func(s string) Block {
		return Heading{Level: level, Text: strings.TrimPrefix(s, prefix)}
	}
}

func hasListLine(s string) bool {
	if strings.HasPrefix(s, "- ") {
		return true
	}
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "- ") {
			return true
		}
	}
	return false
}

// buildList keeps only the "- " lines; other lines of the chunk are dropped.
func buildList(s string) Block {
	var items []Inline
	for _, line := range strings.Split(s, "\n") {
		if item, ok := strings.CutPrefix(line, "- "); ok {
			items = append(items, FormatInline(item))
		}
	}
	return List{Items: items}
}

func buildBlockquote(s string) Block {
	return Blockquote{Inline: FormatInline(strings.TrimPrefix(s, "> "))}
}

func buildParagraph(s string) Block {
	return Paragraph{Inline: FormatInline(s)}
}
