package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/mudawwana/internal/config"
	"github.com/mithrel/mudawwana/internal/wire"
)

type ctxKey string

const (
	appKey ctxKey = "app"
	cfgKey ctxKey = "cfg"
)

// noAppAnnotation marks commands that only need configuration, not the store.
const noAppAnnotation = "mudawwana/no-app"

// Execute is the entrypoint: it builds the root cobra.Command
// and calls its Execute() method to run the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the Cobra root command and wires dependencies.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "mudawwana",
		Short:         "Mudawwana: bilingual blog server and content tools",
		SilenceUsage:  true, // don't show usage on runtime errors
		SilenceErrors: true, // let main print errors once
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			ctx := context.WithValue(cmd.Context(), cfgKey, v)
			if !needsApp(cmd) {
				cmd.SetContext(ctx)
				return nil
			}
			if err := config.CheckConfigValidity(v); err != nil {
				return fmt.Errorf("invalid config (run 'mudawwana config check'):\n%w", err)
			}
			// Wire up the app and stash it in context for subcommands.
			app, err := wire.BuildApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(ctx, appKey, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app, ok := cmd.Context().Value(appKey).(*wire.App); ok {
				return app.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newPostCmd())
	cmd.AddCommand(newCategoryCmd())
	cmd.AddCommand(newTagCmd())
	cmd.AddCommand(newNewsletterCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

// loadConfig resolves config the same way for commands and shell completion.
func loadConfig(cmd *cobra.Command, cfgPath string) (*viper.Viper, error) {
	v := viper.New()
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	}
	if err := config.Load(cmd.Context(), v); err != nil {
		return nil, err
	}
	applyConfigFlagOverrides(cmd, v, map[string]string{"listen": "http_addr"})
	return v, nil
}

func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[noAppAnnotation] == "true" {
			return false
		}
	}
	return true
}

func noApp() map[string]string { return map[string]string{noAppAnnotation: "true"} }

func getApp(cmd *cobra.Command) *wire.App {
	v := cmd.Context().Value(appKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return v.(*wire.App)
}

func getConfig(cmd *cobra.Command) *viper.Viper {
	v, ok := cmd.Context().Value(cfgKey).(*viper.Viper)
	if !ok {
		fmt.Fprintln(os.Stderr, "internal error: config not loaded")
		os.Exit(1)
	}
	return v
}
