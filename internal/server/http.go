// Package server exposes the blog over HTTP: server-rendered pages for
// readers and a JSON API under /api.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/quic-go/quic-go/http3"
	"go.uber.org/zap"

	"github.com/mithrel/mudawwana/internal/pages"
	"github.com/mithrel/mudawwana/internal/site"
	"github.com/mithrel/mudawwana/pkg/api"
)

const (
	sessionName     = "mudawwana"
	shutdownTimeout = 10 * time.Second
)

// Options configure the HTTP layer.
type Options struct {
	Addr          string
	SessionSecret string
	DefaultLang   api.Lang
	TLS           TLSOptions
}

// Server serves the blog backed by a site.Service.
type Server struct {
	site  *site.Service
	pages *pages.Set
	log   *zap.Logger
	opts  Options
	tmpl  map[string]*template.Template
}

func New(svc *site.Service, pg *pages.Set, log *zap.Logger, opts Options) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DefaultLang == "" {
		opts.DefaultLang = api.LangEN
	}
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{site: svc, pages: pg, log: log, opts: opts, tmpl: tmpl}, nil
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(s.log), gin.Recovery())

	store := cookie.NewStore([]byte(s.opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   s.opts.TLS.Enabled(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(s.language())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.GET("/", s.handleHome)
	r.GET("/articles", s.handleArticles)
	r.GET("/articles/:slug", s.handleArticle)
	r.POST("/articles/:slug/comments", s.handleCommentForm)
	r.POST("/articles/:slug/react", s.handleReactForm)
	r.POST("/comments/:id/delete", s.handleDeleteCommentForm)
	r.GET("/categories", s.handleCategories)
	r.GET("/categories/:slug", s.handleCategory)
	r.GET("/tags/:slug", s.handleTag)
	for _, name := range pages.Names {
		r.GET("/"+name, s.handleStatic(name))
	}
	r.GET("/lang/:lang", s.handleLang)
	r.POST("/newsletter", s.handleNewsletterForm)

	a := r.Group("/api")
	{
		a.GET("/posts", s.apiPosts)
		a.GET("/posts/recent", s.apiRecent)
		a.GET("/posts/featured", s.apiFeatured)
		a.GET("/posts/:slug", s.apiPost)
		a.GET("/posts/:slug/comments", s.apiComments)
		a.POST("/posts/:slug/comments", s.apiAddComment)
		a.GET("/posts/:slug/reactions", s.apiReactions)
		a.POST("/posts/:slug/reactions", s.apiReact)
		a.DELETE("/posts/:slug/reactions", s.apiUnreact)
		a.DELETE("/comments/:id", s.apiDeleteComment)
		a.GET("/search", s.apiSearch)
		a.GET("/categories", s.apiCategories)
		a.GET("/categories/:slug", s.apiCategory)
		a.GET("/tags", s.apiTags)
		a.GET("/tags/:slug", s.apiTag)
		a.POST("/newsletter/subscribe", s.apiSubscribe)
		a.POST("/newsletter/unsubscribe", s.apiUnsubscribe)
	}

	r.NoRoute(s.handleNoRoute)
	return r
}

// Serve listens on Options.Addr until ctx is cancelled. TLS is served when a
// certificate source is configured, plus HTTP/3 when enabled.
func (s *Server) Serve(ctx context.Context) error {
	var handler http.Handler = s.Router()
	tlsConf, err := s.opts.TLS.Build(ctx)
	if err != nil {
		return err
	}

	var h3 *http3.Server
	if tlsConf != nil && s.opts.TLS.HTTP3 {
		h3 = &http3.Server{Addr: s.opts.Addr, Handler: handler, TLSConfig: http3.ConfigureTLSConfig(tlsConf.Clone())}
		handler = altSvc(h3, handler)
	}

	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           handler,
		TLSConfig:         tlsConf,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		if tlsConf != nil {
			errc <- srv.ListenAndServeTLS("", "")
			return
		}
		errc <- srv.ListenAndServe()
	}()
	if h3 != nil {
		go func() { errc <- fmt.Errorf("http3: %w", h3.ListenAndServe()) }()
	}
	s.log.Info("listening", zap.String("addr", s.opts.Addr), zap.Bool("tls", tlsConf != nil), zap.Bool("http3", h3 != nil))

	select {
	case <-ctx.Done():
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			s.shutdown(srv, h3)
			return err
		}
	}
	s.shutdown(srv, h3)
	return nil
}

func (s *Server) shutdown(srv *http.Server, h3 *http3.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.log.Warn("shutdown", zap.Error(err))
	}
	if h3 != nil {
		_ = h3.Close()
	}
}

// altSvc advertises the HTTP/3 endpoint on every TCP response.
func altSvc(h3 *http3.Server, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h3.SetQUICHeaders(w.Header())
		next.ServeHTTP(w, r)
	})
}
