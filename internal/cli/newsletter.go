package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithrel/mudawwana/internal/present"
	"github.com/mithrel/mudawwana/internal/site"
)

func newNewsletterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsletter",
		Short: "Manage newsletter subscribers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "subscribe <email>",
		Short: "Subscribe an address (reactivates an unsubscribed one)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := getApp(cmd).Site.Subscribe(cmd.Context(), site.SubscribeInput{Email: args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unsubscribe <email>",
		Short: "Deactivate an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := getApp(cmd).Site.Unsubscribe(cmd.Context(), site.SubscribeInput{Email: args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	})

	var out outputFlags
	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List subscribers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options(app)
			if err != nil {
				return err
			}
			subs, err := app.Site.Subscribers(cmd.Context(), !all)
			if err != nil {
				return err
			}
			return present.RenderSubscribers(cmd.OutOrStdout(), subs, opts)
		},
	}
	addOutputFlags(list, &out, "plain")
	list.Flags().BoolVar(&all, "all", false, "include unsubscribed addresses")
	cmd.AddCommand(list)
	return cmd
}
