package cli

import (
	"github.com/spf13/cobra"

	"github.com/mithrel/mudawwana/internal/present"
)

func newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Inspect categories",
	}
	var out outputFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories with published post counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options(app)
			if err != nil {
				return err
			}
			cats, err := app.Site.AllCategories(cmd.Context())
			if err != nil {
				return err
			}
			return present.RenderCategories(cmd.OutOrStdout(), cats, opts)
		},
	}
	addOutputFlags(list, &out, "plain")
	cmd.AddCommand(list)
	return cmd
}

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Inspect tags",
	}
	var out outputFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List tags with published post counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options(app)
			if err != nil {
				return err
			}
			tags, err := app.Site.AllTags(cmd.Context())
			if err != nil {
				return err
			}
			return present.RenderTags(cmd.OutOrStdout(), tags, opts)
		},
	}
	addOutputFlags(list, &out, "plain")
	cmd.AddCommand(list)
	return cmd
}
