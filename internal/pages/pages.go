// Package pages serves the static about, privacy and terms pages. Each page
// is embedded as markdown per language and rendered once with goldmark.
package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/mithrel/mudawwana/pkg/api"
)

//go:embed content/*.md
var content embed.FS

// Names lists the static pages in menu order.
var Names = []string{"about", "privacy", "terms"}

type Page struct {
	Name  string
	Lang  api.Lang
	Title string
	HTML  template.HTML
}

// Set holds every page in every language.
type Set struct {
	pages map[string]Page
}

func key(name string, l api.Lang) string { return name + "." + string(l) }

// Load renders the embedded pages. Raw HTML in the markdown is dropped.
func Load() (*Set, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	s := &Set{pages: make(map[string]Page, len(Names)*len(api.Langs))}
	for _, name := range Names {
		for _, l := range api.Langs {
			raw, err := content.ReadFile("content/" + key(name, l) + ".md")
			if err != nil {
				return nil, fmt.Errorf("page %s/%s: %w", name, l, err)
			}
			var buf bytes.Buffer
			if err := md.Convert(raw, &buf); err != nil {
				return nil, fmt.Errorf("page %s/%s: %w", name, l, err)
			}
			s.pages[key(name, l)] = Page{
				Name:  name,
				Lang:  l,
				Title: title(string(raw)),
				HTML:  template.HTML(buf.String()),
			}
		}
	}
	return s, nil
}

// Get returns the named page in l, or false when there is no such page.
func (s *Set) Get(name string, l api.Lang) (Page, bool) {
	p, ok := s.pages[key(name, l)]
	return p, ok
}

// title is the text of the first level-one heading.
func title(md string) string {
	for _, line := range strings.Split(md, "\n") {
		if t, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return ""
}
