// Package wire builds the application graph from configuration.
package wire

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mithrel/mudawwana/internal/config"
	"github.com/mithrel/mudawwana/internal/db"
	"github.com/mithrel/mudawwana/internal/logging"
	"github.com/mithrel/mudawwana/internal/pages"
	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/internal/site"
	"github.com/mithrel/mudawwana/pkg/api"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg      *viper.Viper
	Log      *zap.Logger
	Store    *db.Store
	Closer   io.Closer
	Renderer *render.Renderer
	Site     *site.Service
	Pages    *pages.Set
}

// BuildApp wires dependencies with the provided config. The config must
// already be loaded and valid.
func BuildApp(ctx context.Context, v *viper.Viper) (*App, error) {
	logger, err := logging.New(v.GetString("log.level"), v.GetString("log.format"))
	if err != nil {
		return nil, err
	}
	store, closer, err := db.Open(ctx, "sqlite://"+config.ResolveDBPath(v))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	pg, err := pages.Load()
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	r := render.New(RenderOptions(v))
	lang, _ := api.ParseLang(v.GetString("site.default_lang"))
	svc := site.New(store, r, logger.Named("site"), site.Settings{
		Title:       v.GetString("site.title"),
		BaseURL:     v.GetString("site.base_url"),
		DefaultLang: lang,
		PerPage:     v.GetInt("site.per_page"),
	})
	logger.Debug("app wired", zap.String("db", config.ResolveDBPath(v)))
	return &App{
		Cfg:      v,
		Log:      logger,
		Store:    store,
		Closer:   closer,
		Renderer: r,
		Site:     svc,
		Pages:    pg,
	}, nil
}

// RenderOptions maps the render.* keys onto renderer options.
func RenderOptions(v *viper.Viper) render.Options {
	return render.Options{
		FallbackLanguage: v.GetString("render.fallback_language"),
		WordsPerMinute:   v.GetInt("render.words_per_minute"),
		HighlightStyle:   v.GetString("render.highlight_style"),
		LineNumbers:      v.GetBool("render.line_numbers"),
	}
}

// Close releases the store and flushes the logger.
func (a *App) Close() error {
	_ = a.Log.Sync()
	if a.Closer == nil {
		return nil
	}
	return a.Closer.Close()
}
