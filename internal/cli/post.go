package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/mudawwana/internal/present"
	"github.com/mithrel/mudawwana/internal/present/format"
	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/internal/util"
	"github.com/mithrel/mudawwana/internal/wire"
	"github.com/mithrel/mudawwana/pkg/api"
)

func newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Browse and render articles",
	}
	cmd.AddCommand(newPostListCmd())
	cmd.AddCommand(newPostShowCmd())
	cmd.AddCommand(newPostRenderCmd())
	cmd.AddCommand(newPostSearchCmd())
	cmd.AddCommand(newPostExportCmd())
	return cmd
}

// FilterOpts narrow post listings.
type FilterOpts struct {
	Category string
	Tag      string
	Since    string
	Until    string
}

func addFilterFlags(cmd *cobra.Command, f *FilterOpts) {
	cmd.Flags().StringVar(&f.Category, "category", "", "category slug")
	cmd.Flags().StringVar(&f.Tag, "tag", "", "tag slug")
	cmd.Flags().StringVar(&f.Since, "since", "", "created at or after (RFC3339, YYYY-MM-DD, or relative like 7d)")
	cmd.Flags().StringVar(&f.Until, "until", "", "created at or before (same formats as --since)")
}

func (f FilterOpts) query() (api.ListQuery, error) {
	since, until, err := util.ParseTimeRange(f.Since, f.Until)
	if err != nil {
		return api.ListQuery{}, err
	}
	return api.ListQuery{CategorySlug: f.Category, TagSlug: f.Tag, Since: since, Until: until}, nil
}

func newPostListCmd() *cobra.Command {
	var filters FilterOpts
	out := outputFlags{browse: true}
	var page, perPage int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options(app)
			if err != nil {
				return err
			}
			q, err := filters.query()
			if err != nil {
				return err
			}
			q.Page, q.PerPage = page, perPage
			if opts.Mode == present.ModeTUI && terminalWidth(cmd.OutOrStdout()) == 0 {
				return fmt.Errorf("--output tui needs a terminal")
			}
			res, err := app.Site.Posts(cmd.Context(), q)
			if err != nil {
				return err
			}
			if opts.Mode == present.ModeTUI {
				return browsePosts(cmd, app, q, res, opts)
			}
			err = withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderPosts(w, res.Data, opts)
			})
			if err != nil {
				return err
			}
			if opts.Mode == present.ModePlain || opts.Mode == present.ModePretty {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "page %d of %d (%d posts)\n", res.Page, res.TotalPages(), res.Total)
			}
			return nil
		},
	}
	addFilterFlags(cmd, &filters)
	addOutputFlags(cmd, &out, "plain")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "posts per page (0 uses site.per_page)")
	registerTaxonomyCompletion(cmd)
	return cmd
}

func newPostShowCmd() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:               "show <slug>",
		Short:             "Display a post with its rendered body",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSlugs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options(app)
			if err != nil {
				return err
			}
			opts.Width = terminalWidth(cmd.OutOrStdout())
			p, err := app.Site.Post(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			doc := app.Renderer.Render(p.Content(opts.Lang))
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderPost(w, p, doc, opts)
			})
		},
	}
	addOutputFlags(cmd, &out, "pretty")
	return cmd
}

func newPostSearchCmd() *cobra.Command {
	var out outputFlags
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search post titles in both languages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options(app)
			if err != nil {
				return err
			}
			posts, err := app.Site.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return present.RenderPosts(cmd.OutOrStdout(), posts, opts)
		},
	}
	addOutputFlags(cmd, &out, "plain")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results")
	return cmd
}

func newPostExportCmd() *cobra.Command {
	var filters FilterOpts
	var out outputFlags
	var pageSize int
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Stream every published post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options(app)
			if err != nil {
				return err
			}
			q, err := filters.query()
			if err != nil {
				return err
			}
			if pageSize <= 0 {
				pageSize = app.Cfg.GetInt("export.page_size")
			}
			w := present.NewPostStreamWriter(cmd.OutOrStdout(), opts)
			return streamPosts(cmd.Context(), pageSize, func(ctx context.Context, page, perPage int) (api.PostPage, error) {
				q.Page, q.PerPage = page, perPage
				return app.Site.Posts(ctx, q)
			}, w)
		},
	}
	addFilterFlags(cmd, &filters)
	addOutputFlags(cmd, &out, "ndjson")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "page size for export paging (0 uses config)")
	return cmd
}

func newPostRenderCmd() *cobra.Command {
	var formatName string
	var stats bool
	cmd := &cobra.Command{
		Use:         "render <file|->",
		Short:       "Render an article body without touching the store",
		Args:        cobra.ExactArgs(1),
		Annotations: noApp(),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			r := render.New(wire.RenderOptions(getConfig(cmd)))
			doc := r.Render(body)
			w := cmd.OutOrStdout()
			switch strings.ToLower(formatName) {
			case "html":
				_, err = io.WriteString(w, r.HTML(doc)+"\n")
			case "markdown", "md":
				_, err = io.WriteString(w, render.Markdown(doc)+"\n")
			case "json":
				err = format.WriteJSON(w, doc, true)
			default:
				return fmt.Errorf("invalid --format: %s (html|markdown|json)", formatName)
			}
			if err != nil {
				return err
			}
			if stats {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%d blocks, %d code, %d min read\n",
					len(doc), doc.Count(render.KindCode), r.ReadTime(body))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", "html", "output format: html|markdown|json")
	cmd.Flags().BoolVar(&stats, "stats", false, "print block counts and read time to stderr")
	return cmd
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, cmd.InOrStdin()); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
