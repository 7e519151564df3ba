package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	ginrender "github.com/gin-gonic/gin/render"

	"github.com/mithrel/mudawwana/internal/site"
	"github.com/mithrel/mudawwana/pkg/api"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplates = []string{"home", "list", "categories", "article", "page", "error"}

// loadTemplates parses the layout once and clones it per page so every page
// can define its own "content".
func loadTemplates() (map[string]*template.Template, error) {
	base, err := template.ParseFS(templateFS, "templates/layout.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	out := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".tmpl"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// pageData is what every template receives.
type pageData struct {
	Lang        api.Lang
	L           site.Labels
	Site        site.Settings
	Path        string
	Title       string
	Description string
	Flashes     []string
	Year        int
	Meta        site.Meta
	Data        any
}

func (s *Server) html(c *gin.Context, status int, name, title string, data any) {
	s.renderPage(c, status, name, pageData{Title: title, Data: data})
}

func (s *Server) renderPage(c *gin.Context, status int, name string, pd pageData) {
	l := langOf(c)
	labels := site.LabelsFor(l)
	pd.Lang = l
	pd.L = labels
	pd.Site = s.site.Settings()
	pd.Path = c.Request.URL.Path
	pd.Year = time.Now().Year()
	if pd.Meta.URL == "" {
		pd.Meta = s.site.PageMeta(l, c.Request.URL.Path, pd.Title, pd.Description)
	}
	if status >= http.StatusBadRequest {
		pd.Meta = pd.Meta.NoIndex()
	}

	sess := sessions.Default(c)
	if flashes := sess.Flashes(); len(flashes) > 0 {
		for _, f := range flashes {
			if key, ok := f.(string); ok {
				pd.Flashes = append(pd.Flashes, labels.Get(key))
			}
		}
		s.saveSession(c, sess)
	}
	c.Render(status, ginrender.HTML{Template: s.tmpl[name], Name: "layout", Data: pd})
}

// htmlError renders the error page matching err.
func (s *Server) htmlError(c *gin.Context, err error) {
	status := statusOf(err)
	labels := site.LabelsFor(langOf(c))
	key := "server_error"
	switch status {
	case http.StatusNotFound:
		key = "page_not_found"
	case http.StatusBadRequest:
		key = "invalid_input"
	default:
		_ = c.Error(err)
	}
	s.html(c, status, "error", labels.Get(key), http.StatusText(status))
}

func (s *Server) flash(c *gin.Context, key string) {
	sess := sessions.Default(c)
	sess.AddFlash(key)
	s.saveSession(c, sess)
}
