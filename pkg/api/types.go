package api

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type Author struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email,omitempty" yaml:"email"`
	AvatarURL string    `json:"avatar_url,omitempty" yaml:"avatar_url"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

type Category struct {
	ID            string    `json:"id" yaml:"id"`
	NameEN        string    `json:"name_en" yaml:"name_en"`
	NameAR        string    `json:"name_ar" yaml:"name_ar"`
	Slug          string    `json:"slug" yaml:"slug"`
	DescriptionEN string    `json:"description_en,omitempty" yaml:"description_en"`
	DescriptionAR string    `json:"description_ar,omitempty" yaml:"description_ar"`
	PostCount     int       `json:"post_count" yaml:"-"`
	CreatedAt     time.Time `json:"created_at" yaml:"-"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"-"`
}

// Name returns the category name in the requested language.
func (c Category) Name(l Lang) string { return pick(l, c.NameEN, c.NameAR) }

// Description returns the category description in the requested language.
func (c Category) Description(l Lang) string { return pick(l, c.DescriptionEN, c.DescriptionAR) }

type Tag struct {
	ID        string    `json:"id" yaml:"id"`
	NameEN    string    `json:"name_en" yaml:"name_en"`
	NameAR    string    `json:"name_ar" yaml:"name_ar"`
	Slug      string    `json:"slug" yaml:"slug"`
	PostCount int       `json:"post_count" yaml:"-"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

func (t Tag) Name(l Lang) string { return pick(l, t.NameEN, t.NameAR) }

// Post is a published (or draft) article with parallel English and Arabic fields.
type Post struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	TitleEN    string    `json:"title_en"`
	TitleAR    string    `json:"title_ar"`
	ExcerptEN  string    `json:"excerpt_en,omitempty"`
	ExcerptAR  string    `json:"excerpt_ar,omitempty"`
	ContentEN  string    `json:"content_en"`
	ContentAR  string    `json:"content_ar"`
	CoverImage string    `json:"cover_image,omitempty"`
	Language   Lang      `json:"language"`
	CategoryID string    `json:"category_id,omitempty"`
	AuthorID   string    `json:"author_id,omitempty"`
	Published  bool      `json:"published"`
	Featured   bool      `json:"featured"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Category   *Category `json:"category,omitempty"`
	Author     *Author   `json:"author,omitempty"`
	Tags       []Tag     `json:"tags"`
	TagSlugs   []string  `json:"-"`
}

// ExcerptRunes is how much of the body is used when a post has no explicit excerpt.
const ExcerptRunes = 150

func (p Post) Title(l Lang) string   { return pick(l, p.TitleEN, p.TitleAR) }
func (p Post) Content(l Lang) string { return pick(l, p.ContentEN, p.ContentAR) }

// Excerpt returns the stored excerpt, or the head of the content followed by "...".
func (p Post) Excerpt(l Lang) string {
	if ex := strings.TrimSpace(pick(l, p.ExcerptEN, p.ExcerptAR)); ex != "" {
		return ex
	}
	n := ExcerptRunes
	body := p.Content(l)
	if utf8.RuneCountInString(body) <= n {
		return body
	}
	return string([]rune(body)[:n]) + "..."
}

// TagNames returns the tag names in the requested language, in stored order.
func (p Post) TagNames(l Lang) []string {
	out := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		out = append(out, t.Name(l))
	}
	return out
}

// CoverURL returns the cover image or a deterministic placeholder sized w x h.
func (p Post) CoverURL(w, h int) string {
	if p.CoverImage != "" {
		return p.CoverImage
	}
	return "https://picsum.photos/seed/" + p.ID + "/" + strconv.Itoa(w) + "/" + strconv.Itoa(h)
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Name      string    `json:"name"`
	Email     string    `json:"-"`
	Body      string    `json:"comment"`
	ReaderID  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type ReactionType string

const (
	ReactionUp   ReactionType = "up"
	ReactionDown ReactionType = "down"
)

// ParseReaction accepts "up" or "down" in any case.
func ParseReaction(s string) (ReactionType, bool) {
	switch ReactionType(strings.ToLower(strings.TrimSpace(s))) {
	case ReactionUp:
		return ReactionUp, true
	case ReactionDown:
		return ReactionDown, true
	}
	return "", false
}

type ReactionCounts struct {
	Up   int `json:"up_count"`
	Down int `json:"down_count"`
	Net  int `json:"net_score"`
}

type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
	Active       bool      `json:"is_active"`
}

type SubscribeResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	AlreadySubscribed bool   `json:"already_subscribed,omitempty"`
}

// ListQuery filters published posts for listing.
type ListQuery struct {
	Page         int
	PerPage      int
	CategorySlug string
	TagSlug      string
	Since        time.Time
	Until        time.Time
}

const (
	MaxPerPage = 100
	// MaxPage keeps Offset far from overflow; pages past it are empty anyway.
	MaxPage = 1_000_000
)

// Normalize clamps paging values to sane defaults.
func (q ListQuery) Normalize(defaultPerPage int) ListQuery {
	q.Page = min(max(q.Page, 1), MaxPage)
	if q.PerPage <= 0 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage <= 0 {
		q.PerPage = 10
	}
	q.PerPage = min(q.PerPage, MaxPerPage)
	return q
}

// Offset is the number of rows skipped for the current page.
func (q ListQuery) Offset() int { return (q.Page - 1) * q.PerPage }

// PostPage describes a single page of posts.
type PostPage struct {
	Data    []Post `json:"data"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// TotalPages is at least 1 so templates can always render a pager.
func (p PostPage) TotalPages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func (p PostPage) HasNext() bool { return p.Page < p.TotalPages() }
func (p PostPage) HasPrev() bool { return p.Page > 1 }
func (p PostPage) Prev() int      { return p.Page - 1 }
func (p PostPage) Next() int      { return p.Page + 1 }

func pick(l Lang, en, ar string) string {
	if l == LangAR && strings.TrimSpace(ar) != "" {
		return ar
	}
	if strings.TrimSpace(en) == "" {
		return ar
	}
	return en
}
