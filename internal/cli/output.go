package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/mudawwana/internal/present"
	"github.com/mithrel/mudawwana/internal/wire"
	"github.com/mithrel/mudawwana/pkg/api"
)

var outputModes = []string{"plain", "pretty", "json", "ndjson"}

// outputFlags are shared by every command that prints records.
type outputFlags struct {
	mode      string
	lang      string
	noHeaders bool
	indent    bool
	// browse enables the interactive tui mode for listing commands.
	browse bool
}

func addOutputFlags(cmd *cobra.Command, o *outputFlags, defaultMode string) {
	modes := outputModes
	if o.browse {
		modes = append(modes[:len(modes):len(modes)], "tui")
	}
	cmd.Flags().StringVarP(&o.mode, "output", "o", defaultMode, "output mode: "+strings.Join(modes, "|"))
	cmd.Flags().StringVar(&o.lang, "lang", "", "display language: en|ar (default site.default_lang)")
	cmd.Flags().BoolVar(&o.noHeaders, "noheaders", false, "hide column headers (plain)")
	cmd.Flags().BoolVar(&o.indent, "indent", false, "indent json output")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("lang", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{string(api.LangEN), string(api.LangAR)}, cobra.ShellCompDirectiveNoFileComp
	})
}

func (o outputFlags) options(app *wire.App) (present.Options, error) {
	mode, ok := present.ParseMode(strings.ToLower(o.mode))
	if !ok || (mode == present.ModeTUI && !o.browse) {
		return present.Options{}, fmt.Errorf("invalid --output: %s", o.mode)
	}
	raw := o.lang
	if raw == "" {
		raw = app.Cfg.GetString("site.default_lang")
	}
	lang, ok := api.ParseLang(raw)
	if !ok {
		return present.Options{}, fmt.Errorf("invalid --lang: %s", raw)
	}
	return present.Options{
		Mode:       mode,
		JSONIndent: o.indent,
		Headers:    !o.noHeaders,
		Lang:       lang,
		ReadTime:   app.Renderer.ReadTime,
	}, nil
}
