package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mithrel/mudawwana/internal/util"
	"github.com/mithrel/mudawwana/internal/wire"
)

const maxCompletions = 20

// withCompletionApp builds a short-lived app; completion skips PersistentPreRunE.
func withCompletionApp(cmd *cobra.Command, fn func(ctx context.Context, app *wire.App) ([]string, error)) ([]string, cobra.ShellCompDirective) {
	cfgPath := ""
	if f := cmd.Flag("config"); f != nil {
		cfgPath = f.Value.String()
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	v, err := loadConfig(cmd, cfgPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	app, err := wire.BuildApp(ctx, v)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer app.Close()
	out, err := fn(ctx, app)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeSlugs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return withCompletionApp(cmd, func(ctx context.Context, app *wire.App) ([]string, error) {
		posts, err := app.Store.Posts.ListTitles(ctx)
		if err != nil {
			return nil, err
		}
		slugs := make([]string, len(posts))
		for i, p := range posts {
			slugs[i] = p.Slug
		}
		return util.ScoreCompletions(toComplete, slugs, maxCompletions), nil
	})
}

func registerTaxonomyCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("category", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return withCompletionApp(cmd, func(ctx context.Context, app *wire.App) ([]string, error) {
			cats, err := app.Site.AllCategories(ctx)
			if err != nil {
				return nil, err
			}
			slugs := make([]string, len(cats))
			for i, c := range cats {
				slugs[i] = c.Slug
			}
			return util.ScoreCompletions(toComplete, slugs, maxCompletions), nil
		})
	})
	_ = cmd.RegisterFlagCompletionFunc("tag", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return withCompletionApp(cmd, func(ctx context.Context, app *wire.App) ([]string, error) {
			tags, err := app.Site.AllTags(ctx)
			if err != nil {
				return nil, err
			}
			slugs := make([]string, len(tags))
			for i, t := range tags {
				slugs[i] = t.Slug
			}
			return util.ScoreCompletions(toComplete, slugs, maxCompletions), nil
		})
	})
}
