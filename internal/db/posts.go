package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mithrel/mudawwana/pkg/api"
)

const postSelect = `SELECT p.id, p.slug, p.title_en, p.title_ar, p.excerpt_en, p.excerpt_ar,
  p.content_en, p.content_ar, p.cover_image, p.language,
  COALESCE(p.category_id, ''), COALESCE(p.author_id, ''), p.published, p.featured,
  p.created_at, p.updated_at,
  COALESCE(c.slug, ''), COALESCE(c.name_en, ''), COALESCE(c.name_ar, ''),
  COALESCE(c.description_en, ''), COALESCE(c.description_ar, ''),
  COALESCE(a.name, ''), COALESCE(a.email, ''), COALESCE(a.avatar_url, '')
FROM posts p
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN authors a ON a.id = p.author_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(sc rowScanner) (api.Post, error) {
	var p api.Post
	var lang string
	var cat api.Category
	var au api.Author
	err := sc.Scan(&p.ID, &p.Slug, &p.TitleEN, &p.TitleAR, &p.ExcerptEN, &p.ExcerptAR,
		&p.ContentEN, &p.ContentAR, &p.CoverImage, &lang,
		&p.CategoryID, &p.AuthorID, &p.Published, &p.Featured,
		&p.CreatedAt, &p.UpdatedAt,
		&cat.Slug, &cat.NameEN, &cat.NameAR, &cat.DescriptionEN, &cat.DescriptionAR,
		&au.Name, &au.Email, &au.AvatarURL)
	if err != nil {
		return api.Post{}, err
	}
	p.Language = api.Lang(lang)
	if p.CategoryID != "" {
		cat.ID = p.CategoryID
		p.Category = &cat
	}
	if p.AuthorID != "" {
		au.ID = p.AuthorID
		p.Author = &au
	}
	p.Tags = []api.Tag{}
	return p, nil
}

// postFilter composes the WHERE clause shared by listing and counting.
func postFilter(q api.ListQuery) (string, []any) {
	conds := []string{"p.published = 1"}
	var args []any
	if q.CategorySlug != "" {
		conds = append(conds, "c.slug = ?")
		args = append(args, strings.ToLower(q.CategorySlug))
	}
	if q.TagSlug != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
  WHERE pt.post_id = p.id AND t.slug = ?)`)
		args = append(args, strings.ToLower(q.TagSlug))
	}
	if !q.Since.IsZero() {
		conds = append(conds, "p.created_at >= ?")
		args = append(args, q.Since.UTC())
	}
	if !q.Until.IsZero() {
		conds = append(conds, "p.created_at <= ?")
		args = append(args, q.Until.UTC())
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// ListPosts returns one page of published posts, newest first, with the exact total.
// Callers are expected to pass a normalized query.
func (s *sqliteStore) ListPosts(ctx context.Context, q api.ListQuery) (api.PostPage, error) {
	q = q.Normalize(0)
	where, args := postFilter(q)
	page := api.PostPage{Data: []api.Post{}, Page: q.Page, PerPage: q.PerPage}

	countSQL := `SELECT COUNT(*) FROM posts p LEFT JOIN categories c ON c.id = p.category_id ` + where
	if err := s.conn(ctx).QueryRowContext(ctx, countSQL, args...).Scan(&page.Total); err != nil {
		return api.PostPage{}, err
	}
	if page.Total == 0 {
		return page, nil
	}
	listSQL := postSelect + "\n" + where + "\nORDER BY p.created_at DESC, p.id DESC\nLIMIT ? OFFSET ?"
	posts, err := s.queryPosts(ctx, listSQL, append(args, q.PerPage, q.Offset())...)
	if err != nil {
		return api.PostPage{}, err
	}
	page.Data = posts
	return page, nil
}

func (s *sqliteStore) GetPostBySlug(ctx context.Context, slug string) (api.Post, error) {
	row := s.conn(ctx).QueryRowContext(ctx, postSelect+"\nWHERE p.slug = ? AND p.published = 1", strings.ToLower(strings.TrimSpace(slug)))
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Post{}, ErrNotFound
		}
		return api.Post{}, err
	}
	posts := []api.Post{p}
	if err := s.loadTags(ctx, posts); err != nil {
		return api.Post{}, err
	}
	return posts[0], nil
}

func (s *sqliteStore) RecentPosts(ctx context.Context, limit int) ([]api.Post, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.queryPosts(ctx, postSelect+"\nWHERE p.published = 1\nORDER BY p.created_at DESC, p.id DESC\nLIMIT ?", limit)
}

// FeaturedPosts returns posts flagged as featured, topped up with the most
// recent posts when fewer than limit are flagged.
func (s *sqliteStore) FeaturedPosts(ctx context.Context, limit int) ([]api.Post, error) {
	if limit <= 0 {
		limit = 3
	}
	featured, err := s.queryPosts(ctx, postSelect+"\nWHERE p.published = 1 AND p.featured = 1\nORDER BY p.created_at DESC, p.id DESC\nLIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	if len(featured) >= limit {
		return featured, nil
	}
	recent, err := s.RecentPosts(ctx, limit+len(featured))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(featured))
	for _, p := range featured {
		seen[p.ID] = struct{}{}
	}
	for _, p := range recent {
		if len(featured) >= limit {
			break
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		featured = append(featured, p)
	}
	return featured, nil
}

// RelatedPosts returns other published posts from the same category.
func (s *sqliteStore) RelatedPosts(ctx context.Context, p api.Post, limit int) ([]api.Post, error) {
	if p.CategoryID == "" {
		return []api.Post{}, nil
	}
	if limit <= 0 {
		limit = 3
	}
	return s.queryPosts(ctx, postSelect+"\nWHERE p.published = 1 AND p.category_id = ? AND p.id <> ?\nORDER BY p.created_at DESC, p.id DESC\nLIMIT ?",
		p.CategoryID, p.ID, limit)
}

// ListTitles returns every published post without bodies, for title search.
func (s *sqliteStore) ListTitles(ctx context.Context) ([]api.Post, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT id, slug, title_en, title_ar, created_at FROM posts
WHERE published = 1 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []api.Post
	for rows.Next() {
		var p api.Post
		if err := rows.Scan(&p.ID, &p.Slug, &p.TitleEN, &p.TitleAR, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Published = true
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreatePost inserts the post and links it to TagSlugs in one transaction.
func (s *sqliteStore) CreatePost(ctx context.Context, p api.Post) (api.Post, error) {
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
	if p.Slug == "" || strings.TrimSpace(p.TitleEN+p.TitleAR) == "" {
		return api.Post{}, fmt.Errorf("%w: post needs a slug and a title", ErrInvalid)
	}
	if p.ID == "" {
		p.ID = api.NewID()
	}
	if p.Language == "" {
		p.Language = api.LangEN
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		q := s.conn(ctx)
		_, err := q.ExecContext(ctx, `INSERT INTO posts(id, slug, title_en, title_ar, excerpt_en, excerpt_ar,
  content_en, content_ar, cover_image, language, category_id, author_id, published, featured, created_at, updated_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			p.ID, p.Slug, p.TitleEN, p.TitleAR, p.ExcerptEN, p.ExcerptAR,
			p.ContentEN, p.ContentAR, p.CoverImage, string(p.Language),
			nullable(p.CategoryID), nullable(p.AuthorID), p.Published, p.Featured,
			p.CreatedAt.UTC(), p.UpdatedAt.UTC())
		if err != nil {
			switch {
			case isUnique(err):
				return fmt.Errorf("%w: slug %q already exists", ErrConflict, p.Slug)
			case isForeignKey(err):
				return fmt.Errorf("%w: unknown category or author", ErrInvalid)
			}
			return err
		}
		for _, slug := range uniqueSlugs(p.TagSlugs) {
			res, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO post_tags(post_id, tag_id) SELECT ?, id FROM tags WHERE slug = ?`, p.ID, slug)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("%w: unknown tag %q", ErrInvalid, slug)
			}
		}
		return nil
	})
	if err != nil {
		return api.Post{}, err
	}
	return p, nil
}

func (s *sqliteStore) queryPosts(ctx context.Context, query string, args ...any) ([]api.Post, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out := []api.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()
	if err := s.loadTags(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadTags fills Tags for every post with a single query.
func (s *sqliteStore) loadTags(ctx context.Context, posts []api.Post) error {
	if len(posts) == 0 {
		return nil
	}
	idx := make(map[string]int, len(posts))
	args := make([]any, 0, len(posts))
	for i, p := range posts {
		idx[p.ID] = i
		args = append(args, p.ID)
	}
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT pt.post_id, t.id, t.slug, t.name_en, t.name_ar, t.created_at, t.updated_at
FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
WHERE pt.post_id IN (`+placeholders(len(args))+`)
ORDER BY t.name_en ASC`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID string
		var t api.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Slug, &t.NameEN, &t.NameAR, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
		if i, ok := idx[postID]; ok {
			posts[i].Tags = append(posts[i].Tags, t)
			posts[i].TagSlugs = append(posts[i].TagSlugs, t.Slug)
		}
	}
	return rows.Err()
}
