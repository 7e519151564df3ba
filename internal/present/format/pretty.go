package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mithrel/mudawwana/pkg/api"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	slugStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	metaStyle  = lipgloss.NewStyle().Faint(true)
	tagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	cardStyle  = lipgloss.NewStyle().PaddingLeft(1).BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(lipgloss.Color("240"))
)

// WritePrettyPosts writes one styled card per post.
func WritePrettyPosts(w io.Writer, posts []api.Post, opts PostOptions) error {
	for i, p := range posts {
		var b strings.Builder
		b.WriteString(titleStyle.Render(p.Title(opts.Lang)))
		if p.Featured {
			b.WriteString(" *")
		}
		b.WriteString("\n" + slugStyle.Render(p.Slug) + "\n")

		meta := []string{humanize.RelTime(p.CreatedAt, opts.now(), "ago", "from now")}
		if name := categoryName(p, opts.Lang); name != "" {
			meta = append(meta, name)
		}
		meta = append(meta, fmt.Sprintf("%d min read", opts.readTime(p.Content(opts.Lang))))
		b.WriteString(metaStyle.Render(strings.Join(meta, " · ")) + "\n")

		b.WriteString(p.Excerpt(opts.Lang))
		if names := p.TagNames(opts.Lang); len(names) > 0 {
			pills := make([]string, len(names))
			for j, n := range names {
				pills[j] = tagStyle.Render(n)
			}
			b.WriteString("\n" + strings.Join(pills, " "))
		}

		sep := "\n"
		if i < len(posts)-1 {
			sep = "\n\n"
		}
		if _, err := io.WriteString(w, cardStyle.Render(b.String())+sep); err != nil {
			return err
		}
	}
	return nil
}
