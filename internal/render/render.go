package render

import (
	"math"
	"strings"
)

// DefaultWordsPerMinute is the reading speed used by ReadTimeMinutes.
const DefaultWordsPerMinute = 200

// Options tune a Renderer. Zero values fall back to the package defaults.
type Options struct {
	FallbackLanguage string
	WordsPerMinute   int
	HighlightStyle   string
	LineNumbers      bool
}

// Renderer renders bodies with fixed options. It holds no mutable state and is
// safe for concurrent use.
type Renderer struct {
	opts Options
}

func New(opts Options) *Renderer {
	if strings.TrimSpace(opts.FallbackLanguage) == "" {
		opts.FallbackLanguage = DefaultFallbackLanguage
	}
	if opts.WordsPerMinute <= 0 {
		opts.WordsPerMinute = DefaultWordsPerMinute
	}
	if opts.HighlightStyle == "" {
		opts.HighlightStyle = DefaultHighlightStyle
	}
	return &Renderer{opts: opts}
}

var std = New(Options{})

// Render transforms body with the default options.
func Render(body string) Document { return std.Render(body) }

// Render splits body into fenced code and prose, then classifies each
// blank-line separated prose chunk. CRLF line endings are normalized first.
func (r *Renderer) Render(body string) Document {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var doc Document
	for _, seg := range SplitFences(body) {
		if seg.Code {
			doc = append(doc, parseCode(seg.Text, r.opts.FallbackLanguage))
			continue
		}
		for _, chunk := range strings.Split(seg.Text, "\n\n") {
			chunk = strings.TrimSpace(chunk)
			if chunk == "" {
				continue
			}
			doc = append(doc, Classify(chunk))
		}
	}
	return doc
}

// ReadTime estimates minutes to read body at the renderer's speed.
func (r *Renderer) ReadTime(body string) int {
	return ReadTimeMinutes(body, r.opts.WordsPerMinute)
}

// ReadTimeMinutes is ceil(words / wpm), counting every whitespace separated
// token of the raw body, fences included.
func ReadTimeMinutes(body string, wpm int) int {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	words := len(strings.Fields(body))
	return int(math.Ceil(float64(words) / float64(wpm)))
}
