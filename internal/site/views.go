package site

import (
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/pkg/api"
)

// TagRef names a tag in the reader's language.
type TagRef struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// PostCard is the listing summary of a post in one language.
type PostCard struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Excerpt      string   `json:"excerpt"`
	CategorySlug string   `json:"category_slug,omitempty"`
	CategoryName string   `json:"category_name,omitempty"`
	AuthorName   string   `json:"author_name,omitempty"`
	Tags         []TagRef `json:"tags"`
	Date         string   `json:"date"`
	ISODate      string   `json:"iso_date"`
	ReadTime     int      `json:"read_time"`
	CoverURL     string   `json:"cover_url"`
	Featured     bool     `json:"featured"`
}

type CategoryView struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PostCount   int    `json:"post_count"`
}

type TagView struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	PostCount int    `json:"post_count"`
}

type CommentView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
	ISODate string `json:"iso_date"`
	Own     bool   `json:"own"`
}

// ReactionState is what a reader sees under an article.
type ReactionState struct {
	api.ReactionCounts
	UserReaction api.ReactionType `json:"user_reaction,omitempty"`
}

type HomeView struct {
	Featured   []PostCard     `json:"featured"`
	Recent     []PostCard     `json:"recent"`
	Categories []CategoryView `json:"categories"`
}

// ListView is a page of cards, optionally scoped to a category or tag.
type ListView struct {
	Cards    []PostCard    `json:"data"`
	Pager    api.PostPage  `json:"-"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PerPage  int           `json:"per_page"`
	Category *CategoryView `json:"category,omitempty"`
	Tag      *TagView      `json:"tag,omitempty"`
}

// ArticleView is everything the article page and its JSON twin need.
type ArticleView struct {
	Post      api.Post        `json:"post"`
	Card      PostCard        `json:"-"`
	Lang      api.Lang        `json:"lang"`
	Blocks    render.Document `json:"blocks"`
	HTML      template.HTML   `json:"html"`
	ReadTime  int             `json:"read_time"`
	Related   []PostCard      `json:"related"`
	Share     []ShareLink     `json:"share"`
	Reactions ReactionState   `json:"reactions"`
	Comments  []CommentView   `json:"comments"`
	URL       string          `json:"url"`
	Meta      Meta            `json:"-"`
	ETag      string          `json:"-"`
}

// FormatDate renders t for display. English dates within a week are relative.
func FormatDate(l api.Lang, t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if l == api.LangAR {
		return t.Format("2006/01/02")
	}
	if d := now.Sub(t); d >= 0 && d < 7*24*time.Hour {
		return humanize.RelTime(t, now, "ago", "from now")
	}
	return t.Format("Jan 2, 2006")
}

func (s *Service) card(l api.Lang, p api.Post) PostCard {
	c := PostCard{
		ID:       p.ID,
		Slug:     p.Slug,
		Title:    p.Title(l),
		Excerpt:  p.Excerpt(l),
		Tags:     make([]TagRef, 0, len(p.Tags)),
		Date:     FormatDate(l, p.CreatedAt, s.now()),
		ISODate:  p.CreatedAt.UTC().Format("2006-01-02"),
		ReadTime: s.r.ReadTime(p.Content(l)),
		CoverURL: p.CoverURL(800, 400),
		Featured: p.Featured,
	}
	if p.Category != nil {
		c.CategorySlug = p.Category.Slug
		c.CategoryName = p.Category.Name(l)
	}
	if p.Author != nil {
		c.AuthorName = p.Author.Name
	}
	for _, t := range p.Tags {
		c.Tags = append(c.Tags, TagRef{Slug: t.Slug, Name: t.Name(l)})
	}
	return c
}

func (s *Service) cards(l api.Lang, posts []api.Post) []PostCard {
	out := make([]PostCard, 0, len(posts))
	for _, p := range posts {
		out = append(out, s.card(l, p))
	}
	return out
}

func categoryView(l api.Lang, c api.Category) CategoryView {
	return CategoryView{Slug: c.Slug, Name: c.Name(l), Description: c.Description(l), PostCount: c.PostCount}
}

func tagView(l api.Lang, t api.Tag) TagView {
	return TagView{Slug: t.Slug, Name: t.Name(l), PostCount: t.PostCount}
}

func (s *Service) commentView(l api.Lang, c api.Comment, readerID string) CommentView {
	return CommentView{
		ID:      c.ID,
		Name:    c.Name,
		Comment: c.Body,
		Date:    FormatDate(l, c.CreatedAt, s.now()),
		ISODate: c.CreatedAt.UTC().Format(time.RFC3339),
		Own:     readerID != "" && c.ReaderID == readerID,
	}
}
