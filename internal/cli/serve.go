package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mithrel/mudawwana/internal/server"
	"github.com/mithrel/mudawwana/pkg/api"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog website and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			v := app.Cfg
			lang, _ := api.ParseLang(v.GetString("site.default_lang"))
			srv, err := server.New(app.Site, app.Pages, app.Log.Named("http"), server.Options{
				Addr:          v.GetString("http_addr"),
				SessionSecret: v.GetString("session.secret"),
				DefaultLang:   lang,
				TLS: server.TLSOptions{
					Domains:  v.GetStringSlice("tls.domains"),
					Email:    v.GetString("tls.email"),
					CertFile: v.GetString("tls.cert_file"),
					KeyFile:  v.GetString("tls.key_file"),
					HTTP3:    v.GetBool("tls.http3"),
				},
			})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", v.GetString("site.title"), v.GetString("http_addr"))
			return srv.Serve(ctx)
		},
	}
	cmd.Flags().String("listen", "", "listen address (overrides http_addr)")
	cmd.Flags().String("site.base_url", "", "public base URL (overrides site.base_url)")
	cmd.Flags().String("log.level", "", "log level (overrides log.level)")
	return cmd
}
