package render

import (
	"bytes"
	"errors"
	"html"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle is the chroma style used for code blocks.
const DefaultHighlightStyle = "monokai"

var errNoLexer = errors.New("render: no lexer for language")

// HTML renders doc as an HTML fragment, one element per block. Text is escaped;
// code blocks are syntax highlighted when chroma knows the language.
func (r *Renderer) HTML(doc Document) string {
	var b strings.Builder
	for _, blk := range doc {
		switch v := blk.(type) {
		case CodeBlock:
			r.writeCode(&b, v)
		case Heading:
			tag := "h" + strconv.Itoa(v.Level)
			b.WriteString("<" + tag + ">" + html.EscapeString(v.Text) + "</" + tag + ">\n")
		case Paragraph:
			b.WriteString("<p>" + v.Inline.HTML() + "</p>\n")
		case List:
			b.WriteString("<ul>\n")
			for _, it := range v.Items {
				b.WriteString("<li>" + it.HTML() + "</li>\n")
			}
			b.WriteString("</ul>\n")
		case Blockquote:
			b.WriteString("<blockquote><p>" + v.Inline.HTML() + "</p></blockquote>\n")
		}
	}
	return b.String()
}

// HTML renders doc with the default options.
func HTML(doc Document) string { return std.HTML(doc) }

func (r *Renderer) writeCode(b *strings.Builder, c CodeBlock) {
	lang := html.EscapeString(c.Language)
	b.WriteString(`<figure class="code-block" data-language="` + lang + `">`)
	b.WriteString(`<figcaption>` + lang + `</figcaption>`)
	var hl bytes.Buffer
	if err := r.highlight(&hl, c); err == nil {
		b.Write(hl.Bytes())
	} else {
		b.WriteString(`<pre><code class="language-` + lang + `">`)
		b.WriteString(html.EscapeString(c.Code))
		b.WriteString("</code></pre>")
	}
	b.WriteString("</figure>\n")
}

func (r *Renderer) highlight(buf *bytes.Buffer, c CodeBlock) error {
	lexer := lexers.Get(c.Language)
	if lexer == nil {
		return errNoLexer
	}
	lexer = chroma.Coalesce(lexer)
	it, err := lexer.Tokenise(nil, c.Code)
	if err != nil {
		return err
	}
	f := chromahtml.New(
		chromahtml.WithLineNumbers(r.opts.LineNumbers),
		chromahtml.TabWidth(4),
	)
	return f.Format(buf, styles.Get(r.opts.HighlightStyle), it)
}
