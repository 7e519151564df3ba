package present

import (
	"io"
	"time"

	"github.com/mithrel/mudawwana/internal/present/format"
	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	// ModeTUI browses interactively; commands that cannot browse print plain.
	ModeTUI
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	Lang       api.Lang
	Now        time.Time
	ReadTime   func(body string) int
	Width      int
}

// ParseMode parses "plain", "pretty", "json", "ndjson" or "tui".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	case "tui":
		return ModeTUI, true
	default:
		return ModePlain, false
	}
}

// PostOptions is the subset of o the post formatters use.
func (o Options) PostOptions() format.PostOptions {
	return format.PostOptions{Lang: o.Lang, Headers: o.Headers, Now: o.Now, ReadTime: o.ReadTime, Width: o.Width}
}

// RenderPosts renders a list of posts according to options.
func RenderPosts(w io.Writer, posts []api.Post, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, posts, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, posts)
	case ModePretty:
		return format.WritePrettyPosts(w, posts, opts.PostOptions())
	default:
		return format.WritePlainPosts(w, posts, opts.PostOptions())
	}
}

// RenderedPost is the machine readable form of a single rendered post.
type RenderedPost struct {
	Post     api.Post        `json:"post"`
	Lang     api.Lang        `json:"lang"`
	ReadTime int             `json:"read_time"`
	Blocks   render.Document `json:"blocks"`
}

// RenderPost renders one post with its already rendered body.
func RenderPost(w io.Writer, p api.Post, doc render.Document, opts Options) error {
	switch opts.Mode {
	case ModeJSON, ModeNDJSON:
		rp := RenderedPost{Post: p, Lang: opts.Lang, Blocks: doc}
		if opts.ReadTime != nil {
			rp.ReadTime = opts.ReadTime(p.Content(opts.Lang))
		}
		return format.WriteJSON(w, rp, opts.JSONIndent && opts.Mode == ModeJSON)
	case ModePretty:
		return format.WritePrettyPost(w, p, doc, opts.PostOptions())
	default:
		return format.WritePlainPosts(w, []api.Post{p}, opts.PostOptions())
	}
}

// RenderCategories renders categories. Pretty falls back to plain.
func RenderCategories(w io.Writer, cats []api.Category, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, cats, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, cats)
	default:
		return format.WritePlainCategories(w, cats, opts.Lang, opts.Headers)
	}
}

// RenderTags renders tags. Pretty falls back to plain.
func RenderTags(w io.Writer, tags []api.Tag, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, tags, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, tags)
	default:
		return format.WritePlainTags(w, tags, opts.Lang, opts.Headers)
	}
}

func RenderSubscribers(w io.Writer, subs []api.Subscriber, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, subs, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, subs)
	default:
		return format.WritePlainSubscribers(w, subs, opts.Headers)
	}
}

// PostStreamWriter writes posts in batches, for exports that page through the store.
type PostStreamWriter interface {
	WritePosts([]api.Post) error
	Close() error
}

// NewPostStreamWriter picks the stream writer for opts.Mode. Pretty streams as plain.
func NewPostStreamWriter(w io.Writer, opts Options) PostStreamWriter {
	switch opts.Mode {
	case ModeJSON:
		return format.NewJSONStreamWriter(w, opts.JSONIndent)
	case ModeNDJSON:
		return format.NewNDJSONStreamWriter(w)
	default:
		return format.NewPlainStreamWriter(w, opts.PostOptions())
	}
}
