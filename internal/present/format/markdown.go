package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/pkg/api"
)

// WritePrettyPost renders a post header and its rendered body through glamour.
func WritePrettyPost(w io.Writer, p api.Post, doc render.Document, opts PostOptions) error {
	meta := []string{
		"**Slug:** " + p.Slug,
		"**Published:** " + p.CreatedAt.Format(time.DateOnly),
		fmt.Sprintf("**%d min read**", opts.readTime(p.Content(opts.Lang))),
	}
	md := fmt.Sprintf(`# %s

> %s
>
> **Category:** %s | **Tags:** %s

---

%s
`, p.Title(opts.Lang), strings.Join(meta, " | "), categoryName(p, opts.Lang), joinTags(p.TagNames(opts.Lang)), render.Markdown(doc))

	width := opts.Width
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}
