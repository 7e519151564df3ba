package site

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mithrel/mudawwana/pkg/api"
)

const (
	metaDescriptionMax = 160
	ogImageWidth       = 1200
	ogImageHeight      = 630

	robotsIndex   = "index, follow, max-image-preview:large"
	robotsNoIndex = "noindex, nofollow"
)

// Meta is the search and social preview data of one page: Open Graph,
// Twitter card, canonical link and, for articles, schema.org JSON-LD.
type Meta struct {
	Type          string // "website" or "article"
	URL           string // canonical, absolute
	Title         string
	Description   string
	Image         string
	ImageWidth    int
	ImageHeight   int
	Locale        string
	SiteName      string
	Keywords      string
	Robots        string
	Author        string
	PublishedTime string
	ModifiedTime  string
	Tags          []string
	// LD is encoded as JSON by html/template inside the ld+json script.
	LD map[string]any
}

// NoIndex marks the page as not for search engines, e.g. error pages.
func (m Meta) NoIndex() Meta {
	m.Robots = robotsNoIndex
	return m
}

func ogLocale(l api.Lang) string {
	if l == api.LangAR {
		return "ar_SA"
	}
	return "en_US"
}

// truncateDescription keeps previews under the length search engines show.
func truncateDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= metaDescriptionMax {
		return s
	}
	return string([]rune(s)[:metaDescriptionMax-3]) + "..."
}

func (s *Service) absURL(path string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + path
}

// PageMeta describes a listing or static page served at path.
func (s *Service) PageMeta(l api.Lang, path, title, description string) Meta {
	if title == "" {
		title = s.cfg.Title
	}
	return Meta{
		Type:        "website",
		URL:         s.absURL(path),
		Title:       title,
		Description: truncateDescription(description),
		Locale:      ogLocale(l),
		SiteName:    s.cfg.Title,
		Robots:      robotsIndex,
	}
}

func (s *Service) articleMeta(l api.Lang, p api.Post, url string) Meta {
	m := Meta{
		Type:          "article",
		URL:           url,
		Title:         p.Title(l),
		Description:   truncateDescription(p.Excerpt(l)),
		Image:         p.CoverURL(ogImageWidth, ogImageHeight),
		ImageWidth:    ogImageWidth,
		ImageHeight:   ogImageHeight,
		Locale:        ogLocale(l),
		SiteName:      s.cfg.Title,
		Robots:        robotsIndex,
		Tags:          p.TagNames(l),
		PublishedTime: p.CreatedAt.UTC().Format(time.RFC3339),
		ModifiedTime:  p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	m.Keywords = strings.Join(m.Tags, ", ")
	if p.Author != nil {
		m.Author = p.Author.Name
	}
	if p.UpdatedAt.IsZero() {
		m.ModifiedTime = m.PublishedTime
	}

	ld := map[string]any{
		"@context":         "https://schema.org",
		"@type":            "BlogPosting",
		"headline":         m.Title,
		"description":      m.Description,
		"image":            m.Image,
		"url":              m.URL,
		"inLanguage":       string(l),
		"datePublished":    m.PublishedTime,
		"dateModified":     m.ModifiedTime,
		"mainEntityOfPage": map[string]any{"@type": "WebPage", "@id": m.URL},
		"publisher":        map[string]any{"@type": "Organization", "name": s.cfg.Title},
	}
	if m.Keywords != "" {
		ld["keywords"] = m.Keywords
	}
	if m.Author != "" {
		ld["author"] = map[string]any{"@type": "Person", "name": m.Author}
	}
	m.LD = ld
	return m
}
