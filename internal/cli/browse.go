package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mithrel/mudawwana/internal/present"
	"github.com/mithrel/mudawwana/internal/present/tui"
	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/internal/wire"
	"github.com/mithrel/mudawwana/pkg/api"
)

// siteSource feeds the browser from the site service. The list filters are
// fixed; only the page changes.
type siteSource struct {
	app  *wire.App
	q    api.ListQuery
	lang api.Lang
}

func (s siteSource) Page(ctx context.Context, page int) (api.PostPage, error) {
	q := s.q
	q.Page = page
	return s.app.Site.Posts(ctx, q)
}

func (s siteSource) Show(ctx context.Context, slug string) (api.Post, render.Document, error) {
	p, err := s.app.Site.Post(ctx, slug)
	if err != nil {
		return api.Post{}, nil, err
	}
	return p, s.app.Renderer.Render(p.Content(s.lang)), nil
}

func browsePosts(cmd *cobra.Command, app *wire.App, q api.ListQuery, first api.PostPage, opts present.Options) error {
	src := siteSource{app: app, q: q, lang: opts.Lang}
	return tui.Browse(cmd.Context(), src, first, tui.Options{
		Post:   opts.PostOptions(),
		Input:  cmd.InOrStdin(),
		Output: cmd.OutOrStdout(),
	})
}
