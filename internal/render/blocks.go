// Package render turns a stored article body into an ordered sequence of typed
// content blocks and renders those blocks for the web (HTML) or the terminal (markdown).
//
// The body syntax is deliberately small: triple-backtick fences for code, "#"/"##"/"###"
// headings, "- " lists, "> " quotes and paragraphs separated by a blank line, with
// bold/italic/code/link micro-syntax inside prose.
package render

import "encoding/json"

// BlockKind identifies the variant of a Block.
type BlockKind string

const (
	KindCode       BlockKind = "code"
	KindHeading    BlockKind = "heading"
	KindParagraph  BlockKind = "paragraph"
	KindList       BlockKind = "list"
	KindBlockquote BlockKind = "blockquote"
)

// Block is one structural unit of a rendered article.
type Block interface {
	Kind() BlockKind
}

// CodeBlock is the verbatim content of a fenced segment.
type CodeBlock struct {
	Language string
	Code     string
}

type Heading struct {
	Level int // 1..3
	Text  string
}

type Paragraph struct {
	Inline Inline
}

type List struct {
	Items []Inline
}

type Blockquote struct {
	Inline Inline
}

func (CodeBlock) Kind() BlockKind  { return KindCode }
func (Heading) Kind() BlockKind    { return KindHeading }
func (Paragraph) Kind() BlockKind  { return KindParagraph }
func (List) Kind() BlockKind       { return KindList }
func (Blockquote) Kind() BlockKind { return KindBlockquote }

// Document is the read-only result of rendering one body.
type Document []Block

// Count returns how many blocks of kind k the document holds.
func (d Document) Count(k BlockKind) int {
	n := 0
	for _, b := range d {
		if b.Kind() == k {
			n++
		}
	}
	return n
}

type blockJSON struct {
	Type     BlockKind `json:"type"`
	Language string    `json:"language,omitempty"`
	Code     string    `json:"code,omitempty"`
	Level    int       `json:"level,omitempty"`
	Text     string    `json:"text,omitempty"`
	Inline   Inline    `json:"inline,omitempty"`
	HTML     string    `json:"html,omitempty"`
	Items    []Inline  `json:"items,omitempty"`
}

// MarshalJSON encodes each block as a tagged object. Inline blocks carry both
// the span tree and its HTML so web and non-web clients can pick one.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make([]blockJSON, 0, len(d))
	for _, b := range d {
		j := blockJSON{Type: b.Kind()}
		switch v := b.(type) {
		case CodeBlock:
			j.Language, j.Code = v.Language, v.Code
		case Heading:
			j.Level, j.Text = v.Level, v.Text
		case Paragraph:
			j.Inline, j.HTML = v.Inline, v.Inline.HTML()
		case Blockquote:
			j.Inline, j.HTML = v.Inline, v.Inline.HTML()
		case List:
			j.Items = v.Items
		}
		out = append(out, j)
	}
	return json.Marshal(out)
}
