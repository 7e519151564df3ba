// Package site is the blog's business layer. It turns storage records into
// per-language view models and validates reader input before it is stored.
package site

import (
	"context"
	"encoding/hex"
	"fmt"
	"html"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/mithrel/mudawwana/internal/db"
	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/internal/util"
	"github.com/mithrel/mudawwana/pkg/api"
)

const (
	homeFeatured  = 3
	homeRecent    = 6
	relatedLimit  = 2
	searchResults = 10
)

type Settings struct {
	Title       string
	BaseURL     string
	DefaultLang api.Lang
	PerPage     int
}

type Service struct {
	store    *db.Store
	r        *render.Renderer
	log      *zap.Logger
	cfg      Settings
	strict   *bluemonday.Policy
	validate *validator.Validate
	now      func() time.Time
}

func New(store *db.Store, r *render.Renderer, log *zap.Logger, cfg Settings) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if r == nil {
		r = render.New(render.Options{})
	}
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = api.LangEN
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 10
	}
	v := validator.New()
	// Same tags gin uses for request binding.
	v.SetTagName("binding")
	return &Service{
		store:    store,
		r:        r,
		log:      log,
		cfg:      cfg,
		strict:   bluemonday.StrictPolicy(),
		validate: v,
		now:      time.Now,
	}
}

func (s *Service) Settings() Settings { return s.cfg }

// Renderer exposes the body renderer used for articles.
func (s *Service) Renderer() *render.Renderer { return s.r }

// ArticleURL is the absolute public URL of an article.
func (s *Service) ArticleURL(slug string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/articles/" + url.PathEscape(slug)
}

func (s *Service) Home(ctx context.Context, l api.Lang) (HomeView, error) {
	featured, err := s.store.Posts.FeaturedPosts(ctx, homeFeatured)
	if err != nil {
		return HomeView{}, fmt.Errorf("featured posts: %w", err)
	}
	recent, err := s.store.Posts.RecentPosts(ctx, homeRecent)
	if err != nil {
		return HomeView{}, fmt.Errorf("recent posts: %w", err)
	}
	cats, err := s.Categories(ctx, l)
	if err != nil {
		return HomeView{}, err
	}
	return HomeView{Featured: s.cards(l, featured), Recent: s.cards(l, recent), Categories: cats}, nil
}

// Articles lists published posts with the query's filters.
func (s *Service) Articles(ctx context.Context, l api.Lang, q api.ListQuery) (ListView, error) {
	q = q.Normalize(s.cfg.PerPage)
	page, err := s.store.Posts.ListPosts(ctx, q)
	if err != nil {
		return ListView{}, fmt.Errorf("list posts: %w", err)
	}
	return s.listView(l, page), nil
}

func (s *Service) listView(l api.Lang, page api.PostPage) ListView {
	cards := s.cards(l, page.Data)
	pager := page
	pager.Data = nil
	return ListView{Cards: cards, Pager: pager, Total: page.Total, Page: page.Page, PerPage: page.PerPage}
}

// CategoryArticles lists one category's posts; an unknown slug is ErrNotFound.
func (s *Service) CategoryArticles(ctx context.Context, l api.Lang, slug string, pageNum int) (ListView, error) {
	c, err := s.store.Taxonomy.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return ListView{}, err
	}
	lv, err := s.Articles(ctx, l, api.ListQuery{Page: pageNum, CategorySlug: c.Slug})
	if err != nil {
		return ListView{}, err
	}
	cv := categoryView(l, c)
	lv.Category = &cv
	return lv, nil
}

// TagArticles lists one tag's posts; an unknown slug is ErrNotFound.
func (s *Service) TagArticles(ctx context.Context, l api.Lang, slug string, pageNum int) (ListView, error) {
	t, err := s.store.Taxonomy.GetTagBySlug(ctx, slug)
	if err != nil {
		return ListView{}, err
	}
	lv, err := s.Articles(ctx, l, api.ListQuery{Page: pageNum, TagSlug: t.Slug})
	if err != nil {
		return ListView{}, err
	}
	tv := tagView(l, t)
	lv.Tag = &tv
	return lv, nil
}

func (s *Service) Categories(ctx context.Context, l api.Lang) ([]CategoryView, error) {
	cats, err := s.store.Taxonomy.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]CategoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView(l, c))
	}
	return out, nil
}

func (s *Service) Tags(ctx context.Context, l api.Lang) ([]TagView, error) {
	tags, err := s.store.Taxonomy.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	out := make([]TagView, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagView(l, t))
	}
	return out, nil
}

// Article assembles the full article page for readerID.
func (s *Service) Article(ctx context.Context, l api.Lang, slug, readerID string) (ArticleView, error) {
	p, err := s.store.Posts.GetPostBySlug(ctx, slug)
	if err != nil {
		return ArticleView{}, err
	}
	body := p.Content(l)
	doc := s.r.Render(body)
	av := ArticleView{
		Post:     p,
		Card:     s.card(l, p),
		Lang:     l,
		Blocks:   doc,
		HTML:     template.HTML(s.r.HTML(doc)),
		ReadTime: s.r.ReadTime(body),
		URL:      s.ArticleURL(p.Slug),
	}
	av.Share = ShareLinks(av.URL, p.Title(l), p.Excerpt(l))
	av.Meta = s.articleMeta(l, p, av.URL)

	related, err := s.store.Posts.RelatedPosts(ctx, p, relatedLimit)
	if err != nil {
		return ArticleView{}, fmt.Errorf("related posts: %w", err)
	}
	av.Related = s.cards(l, related)

	if av.Reactions, err = s.reactionState(ctx, p.ID, readerID); err != nil {
		return ArticleView{}, err
	}
	if av.Comments, err = s.comments(ctx, l, p.ID, readerID); err != nil {
		return ArticleView{}, err
	}
	av.ETag = s.articleETag(av, readerID)
	return av, nil
}

// Posts returns a page of published posts with both language variants.
func (s *Service) Posts(ctx context.Context, q api.ListQuery) (api.PostPage, error) {
	page, err := s.store.Posts.ListPosts(ctx, q.Normalize(s.cfg.PerPage))
	if err != nil {
		return api.PostPage{}, fmt.Errorf("list posts: %w", err)
	}
	return page, nil
}

func (s *Service) RecentPosts(ctx context.Context, limit int) ([]api.Post, error) {
	return s.store.Posts.RecentPosts(ctx, limit)
}

func (s *Service) FeaturedPosts(ctx context.Context, limit int) ([]api.Post, error) {
	return s.store.Posts.FeaturedPosts(ctx, limit)
}

// AllCategories lists categories with both names and their published post count.
func (s *Service) AllCategories(ctx context.Context) ([]api.Category, error) {
	return s.store.Taxonomy.ListCategories(ctx)
}

func (s *Service) AllTags(ctx context.Context) ([]api.Tag, error) {
	return s.store.Taxonomy.ListTags(ctx)
}

func (s *Service) Category(ctx context.Context, slug string) (api.Category, error) {
	return s.store.Taxonomy.GetCategoryBySlug(ctx, slug)
}

func (s *Service) Tag(ctx context.Context, slug string) (api.Tag, error) {
	return s.store.Taxonomy.GetTagBySlug(ctx, slug)
}

// Post returns a published post by slug.
func (s *Service) Post(ctx context.Context, slug string) (api.Post, error) {
	return s.store.Posts.GetPostBySlug(ctx, slug)
}

// Search ranks published posts by fuzzy title match in both languages.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]api.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []api.Post{}, nil
	}
	if limit <= 0 {
		limit = searchResults
	}
	titles, err := s.store.Posts.ListTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	candidates := make([]string, len(titles))
	for i, p := range titles {
		candidates[i] = p.TitleEN + " | " + p.TitleAR
	}
	idx := util.RankFuzzy(query, candidates, limit)
	out := make([]api.Post, 0, len(idx))
	for _, i := range idx {
		out = append(out, titles[i])
	}
	s.log.Debug("search", zap.String("query", query), zap.Int("results", len(out)))
	return out, nil
}

// articleETag covers the post content and everything the reader sees around
// it, so a new comment or reaction changes the tag.
func (s *Service) articleETag(av ArticleView, readerID string) string {
	h := blake3.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%d\x00%d\x00%s",
		av.Post.Hash(), av.Lang, readerID, s.now().UTC().Format("2006-01-02"),
		av.Reactions.Up, av.Reactions.Down, av.Reactions.UserReaction)
	for _, c := range av.Comments {
		fmt.Fprintf(h, "\x00%s", c.ID)
	}
	return `"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`
}

// cleanText strips every HTML construct and returns plain text.
func (s *Service) cleanText(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(in)))
}

func (s *Service) invalid(err error) error {
	return fmt.Errorf("%w: %v", db.ErrInvalid, err)
}
