package render

import (
	"html"
	"net/url"
	"strings"
)

// SpanKind identifies an inline span variant.
type SpanKind string

const (
	SpanText   SpanKind = "text"
	SpanBold   SpanKind = "bold"
	SpanItalic SpanKind = "italic"
	SpanCode   SpanKind = "code"
	SpanLink   SpanKind = "link"
)

// Span is one node of inline formatted text. Text spans carry Text; every other
// kind carries Children, and links also carry URL.
type Span struct {
	Kind     SpanKind `json:"kind"`
	Text     string   `json:"text,omitempty"`
	URL      string   `json:"url,omitempty"`
	Children Inline   `json:"children,omitempty"`
}

// Inline is a formatted run of prose.
type Inline []Span

// Text returns the inline content with all formatting removed.
func (in Inline) Text() string {
	var b strings.Builder
	in.writeText(&b)
	return b.String()
}

func (in Inline) writeText(b *strings.Builder) {
	for _, s := range in {
		if s.Kind == SpanText {
			b.WriteString(s.Text)
			continue
		}
		s.Children.writeText(b)
	}
}

// HTML renders the spans as escaped HTML. Links open in a new browsing context
// without opener or referrer.
func (in Inline) HTML() string {
	var b strings.Builder
	in.writeHTML(&b)
	return b.String()
}

func (in Inline) writeHTML(b *strings.Builder) {
	for _, s := range in {
		switch s.Kind {
		case SpanText:
			b.WriteString(html.EscapeString(s.Text))
		case SpanBold:
			wrapHTML(b, "strong", s.Children)
		case SpanItalic:
			wrapHTML(b, "em", s.Children)
		case SpanCode:
			wrapHTML(b, "code", s.Children)
		case SpanLink:
			b.WriteString(`<a href="`)
			b.WriteString(html.EscapeString(safeHref(s.URL)))
			b.WriteString(`" target="_blank" rel="noopener noreferrer">`)
			s.Children.writeHTML(b)
			b.WriteString("</a>")
		}
	}
}

func wrapHTML(b *strings.Builder, tag string, children Inline) {
	b.WriteString("<" + tag + ">")
	children.writeHTML(b)
	b.WriteString("</" + tag + ">")
}

// Markdown serializes the spans back into the body micro-syntax.
func (in Inline) Markdown() string {
	var b strings.Builder
	in.writeMarkdown(&b)
	return b.String()
}

func (in Inline) writeMarkdown(b *strings.Builder) {
	for _, s := range in {
		switch s.Kind {
		case SpanText:
			b.WriteString(escapeMarkdown(s.Text))
		case SpanBold:
			b.WriteString("**")
			s.Children.writeMarkdown(b)
			b.WriteString("**")
		case SpanItalic:
			b.WriteString("*")
			s.Children.writeMarkdown(b)
			b.WriteString("*")
		case SpanCode:
			// Backslashes are literal inside code spans.
			b.WriteString("`" + s.Children.Text() + "`")
		case SpanLink:
			b.WriteString("[")
			s.Children.writeMarkdown(b)
			b.WriteString("](" + s.URL + ")")
		}
	}
}

// markdownEscaper backslash-escapes the characters CommonMark would read as
// emphasis, code, links or escapes. Our own formatter left them literal.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
)

// escapeMarkdown escapes inline metacharacters, plus block markers that start
// a line inside the text and would otherwise open a heading, quote or list.
func escapeMarkdown(s string) string {
	s = markdownEscaper.Replace(s)
	if !strings.Contains(s, "\n") {
		return s
	}
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if l := lines[i]; l != "" && strings.ContainsRune("#>-+", rune(l[0])) {
			lines[i] = `\` + l
		}
	}
	return strings.Join(lines, "\n")
}

// safeHref drops script-capable schemes; relative references pass through.
func safeHref(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return raw
	}
	return "#"
}

// inlineRules are applied in order. Bold must run before italic because "**"
// would otherwise be consumed as two italic delimiters.
var inlineRules = []inlineRule{
	delimRule{kind: SpanBold, delim: []rune("**")},
	delimRule{kind: SpanBold, delim: []rune("__")},
	delimRule{kind: SpanItalic, delim: []rune("*")},
	delimRule{kind: SpanItalic, delim: []rune("_")},
	delimRule{kind: SpanCode, delim: []rune("`")},
	linkRule{},
}

// FormatInline applies the inline substitutions to s. It never fails; text that
// does not form a complete construct stays literal.
func FormatInline(s string) Inline {
	if s == "" {
		return nil
	}
	in := Inline{{Kind: SpanText, Text: s}}
	for _, r := range inlineRules {
		in = r.apply(in)
	}
	return in
}

type inlineRule interface {
	apply(Inline) Inline
}

// unit is either one rune of plain text or an already formatted span.
type unit struct {
	r    rune
	span *Span
}

func (u unit) is(r rune) bool { return u.span == nil && u.r == r }

func flatten(in Inline) []unit {
	var us []unit
	for i := range in {
		if in[i].Kind != SpanText {
			s := in[i]
			us = append(us, unit{span: &s})
			continue
		}
		for _, r := range in[i].Text {
			us = append(us, unit{r: r})
		}
	}
	return us
}

func collect(us []unit) Inline {
	var out Inline
	var text []rune
	flush := func() {
		if len(text) > 0 {
			out = append(out, Span{Kind: SpanText, Text: string(text)})
			text = text[:0]
		}
	}
	for _, u := range us {
		if u.span == nil {
			text = append(text, u.r)
			continue
		}
		flush()
		out = append(out, *u.span)
	}
	flush()
	return out
}

// descend applies r inside every formatted span except code, whose content is literal.
func descend(in Inline, r inlineRule) Inline {
	out := make(Inline, len(in))
	for i, s := range in {
		if s.Kind != SpanText && s.Kind != SpanCode {
			s.Children = r.apply(s.Children)
		}
		out[i] = s
	}
	return out
}

// delimRule matches delim, at least one unit of content without a newline, delim.
// The earliest closing delimiter wins.
type delimRule struct {
	kind  SpanKind
	delim []rune
}

func (r delimRule) apply(in Inline) Inline {
	us := flatten(descend(in, r))
	dest := linkDestinations(us)
	out := make([]unit, 0, len(us))
	for i := 0; i < len(us); {
		if end, ok := r.closeAt(us, dest, i); ok {
			s := Span{Kind: r.kind, Children: collect(us[i+len(r.delim) : end])}
			out = append(out, unit{span: &s})
			i = end + len(r.delim)
			continue
		}
		out = append(out, us[i])
		i++
	}
	return collect(out)
}

// closeAt follows regexp "(.+?)" semantics: the first delimiter after at least
// one content unit closes, even when that unit is itself a delimiter rune, so
// "****" yields an italic "*" followed by a literal "*".
func (r delimRule) closeAt(us []unit, dest []bool, i int) (int, bool) {
	if !r.delimAt(us, dest, i) {
		return 0, false
	}
	start := i + len(r.delim)
	for k := start; k < len(us); k++ {
		if us[k].is('\n') {
			return 0, false
		}
		if k > start && r.delimAt(us, dest, k) {
			return k, true
		}
	}
	return 0, false
}

// delimAt reports whether the delimiter starts at i. Runes inside a link
// destination never act as delimiters, so "a_b_c" in a URL stays intact.
func (r delimRule) delimAt(us []unit, dest []bool, i int) bool {
	if i+len(r.delim) > len(us) {
		return false
	}
	for j, d := range r.delim {
		if dest[i+j] || !us[i+j].is(d) {
			return false
		}
	}
	return true
}

// linkRule matches [label](url). The label may contain formatted spans but no
// "]"; the URL must be plain text without ")".
type linkRule struct{}

func (r linkRule) apply(in Inline) Inline {
	us := flatten(descend(in, r))
	out := make([]unit, 0, len(us))
	for i := 0; i < len(us); {
		if m, ok := matchLink(us, i); ok {
			href := make([]rune, 0, m.close-m.mid-2)
			for _, u := range us[m.mid+2 : m.close] {
				href = append(href, u.r)
			}
			s := Span{Kind: SpanLink, URL: string(href), Children: collect(us[i+1 : m.mid])}
			out = append(out, unit{span: &s})
			i = m.close + 1
			continue
		}
		out = append(out, us[i])
		i++
	}
	return collect(out)
}

// linkMatch holds the positions of "]" and the closing ")" of a link that
// starts with "[" at some index.
type linkMatch struct {
	mid   int
	close int
}

func matchLink(us []unit, i int) (linkMatch, bool) {
	if !us[i].is('[') {
		return linkMatch{}, false
	}
	j := i + 1
	for j < len(us) && !us[j].is(']') {
		j++
	}
	if j == i+1 || j+1 >= len(us) || !us[j+1].is('(') {
		return linkMatch{}, false
	}
	k := j + 2
	for k < len(us) && us[k].span == nil && us[k].r != ')' {
		k++
	}
	if k >= len(us) || us[k].span != nil || k == j+2 {
		return linkMatch{}, false
	}
	return linkMatch{mid: j, close: k}, true
}

// linkDestinations marks the units that form the URL of a well-formed link.
func linkDestinations(us []unit) []bool {
	dest := make([]bool, len(us))
	for i := 0; i < len(us); i++ {
		m, ok := matchLink(us, i)
		if !ok {
			continue
		}
		for k := m.mid + 2; k < m.close; k++ {
			dest[k] = true
		}
		i = m.close
	}
	return dest
}
