package render

import "strings"

// Markdown serializes doc back into standard markdown, for terminal renderers
// that expect CommonMark input.
func Markdown(doc Document) string {
	parts := make([]string, 0, len(doc))
	for _, blk := range doc {
		switch v := blk.(type) {
		case CodeBlock:
			code := v.Code
			if code != "" && !strings.HasSuffix(code, "\n") {
				code += "\n"
			}
			parts = append(parts, Fence+v.Language+"\n"+code+Fence)
		case Heading:
			parts = append(parts, strings.Repeat("#", v.Level)+" "+escapeMarkdown(v.Text))
		case Paragraph:
			parts = append(parts, v.Inline.Markdown())
		case List:
			lines := make([]string, len(v.Items))
			for i, it := range v.Items {
				lines[i] = "- " + it.Markdown()
			}
			parts = append(parts, strings.Join(lines, "\n"))
		case Blockquote:
			parts = append(parts, "> "+v.Inline.Markdown())
		}
	}
	return strings.Join(parts, "\n\n")
}
