package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mithrel/mudawwana/internal/seed"
)

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load authors, taxonomy and posts from YAML (default: bundled sample content)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			var r io.Reader = bytes.NewReader(seed.Default())
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			data, err := seed.Parse(r)
			if err != nil {
				return err
			}
			res, err := seed.Load(cmd.Context(), app.Store, app.Log.Named("seed"), data)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d authors, %d categories, %d tags, %d posts (%d already present)\n",
				res.Authors, res.Categories, res.Tags, res.Posts, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed YAML file")
	return cmd
}
