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

// ListCategories returns all categories ordered by English name with their
// published post counts.
func (s *sqliteStore) ListCategories(ctx context.Context) ([]api.Category, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT c.id, c.slug, c.name_en, c.name_ar, c.description_en, c.description_ar,
  c.created_at, c.updated_at, COUNT(p.id)
FROM categories c
LEFT JOIN posts p ON p.category_id = c.id AND p.published = 1
GROUP BY c.id
ORDER BY c.name_en ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []api.Category{}
	for rows.Next() {
		var c api.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.NameEN, &c.NameAR, &c.DescriptionEN, &c.DescriptionAR,
			&c.CreatedAt, &c.UpdatedAt, &c.PostCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetCategoryBySlug(ctx context.Context, slug string) (api.Category, error) {
	var c api.Category
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT id, slug, name_en, name_ar, description_en, description_ar, created_at, updated_at
FROM categories WHERE slug = ?`, strings.ToLower(strings.TrimSpace(slug)))
	if err := row.Scan(&c.ID, &c.Slug, &c.NameEN, &c.NameAR, &c.DescriptionEN, &c.DescriptionAR, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Category{}, ErrNotFound
		}
		return api.Category{}, err
	}
	n, err := s.CategoryPostCount(ctx, c.ID)
	if err != nil {
		return api.Category{}, err
	}
	c.PostCount = n
	return c, nil
}

func (s *sqliteStore) CategoryPostCount(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE category_id = ? AND published = 1`, categoryID).Scan(&n)
	return n, err
}

// ListTags returns all tags ordered by English name with their published post counts.
func (s *sqliteStore) ListTags(ctx context.Context) ([]api.Tag, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT t.id, t.slug, t.name_en, t.name_ar, t.created_at, t.updated_at, COUNT(p.id)
FROM tags t
LEFT JOIN post_tags pt ON pt.tag_id = t.id
LEFT JOIN posts p ON p.id = pt.post_id AND p.published = 1
GROUP BY t.id
ORDER BY t.name_en ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []api.Tag{}
	for rows.Next() {
		var t api.Tag
		if err := rows.Scan(&t.ID, &t.Slug, &t.NameEN, &t.NameAR, &t.CreatedAt, &t.UpdatedAt, &t.PostCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetTagBySlug(ctx context.Context, slug string) (api.Tag, error) {
	var t api.Tag
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT id, slug, name_en, name_ar, created_at, updated_at FROM tags WHERE slug = ?`,
		strings.ToLower(strings.TrimSpace(slug)))
	if err := row.Scan(&t.ID, &t.Slug, &t.NameEN, &t.NameAR, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Tag{}, ErrNotFound
		}
		return api.Tag{}, err
	}
	n, err := s.TagPostCount(ctx, t.ID)
	if err != nil {
		return api.Tag{}, err
	}
	t.PostCount = n
	return t, nil
}

func (s *sqliteStore) TagPostCount(ctx context.Context, tagID string) (int, error) {
	var n int
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM post_tags pt JOIN posts p ON p.id = pt.post_id
WHERE pt.tag_id = ? AND p.published = 1`, tagID).Scan(&n)
	return n, err
}

func (s *sqliteStore) CreateCategory(ctx context.Context, c api.Category) (api.Category, error) {
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	if c.Slug == "" || strings.TrimSpace(c.NameEN) == "" {
		return api.Category{}, fmt.Errorf("%w: category needs a slug and an English name", ErrInvalid)
	}
	if c.ID == "" {
		c.ID = api.NewID()
	}
	c.CreatedAt, c.UpdatedAt = stamp(c.CreatedAt, c.UpdatedAt)
	_, err := s.conn(ctx).ExecContext(ctx, `INSERT INTO categories(id, slug, name_en, name_ar, description_en, description_ar, created_at, updated_at)
VALUES(?,?,?,?,?,?,?,?)`, c.ID, c.Slug, c.NameEN, c.NameAR, c.DescriptionEN, c.DescriptionAR, c.CreatedAt, c.UpdatedAt)
	if isUnique(err) {
		return api.Category{}, fmt.Errorf("%w: category %q already exists", ErrConflict, c.Slug)
	}
	if err != nil {
		return api.Category{}, err
	}
	return c, nil
}

func (s *sqliteStore) CreateTag(ctx context.Context, t api.Tag) (api.Tag, error) {
	t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
	if t.Slug == "" || strings.TrimSpace(t.NameEN) == "" {
		return api.Tag{}, fmt.Errorf("%w: tag needs a slug and an English name", ErrInvalid)
	}
	if t.ID == "" {
		t.ID = api.NewID()
	}
	t.CreatedAt, t.UpdatedAt = stamp(t.CreatedAt, t.UpdatedAt)
	_, err := s.conn(ctx).ExecContext(ctx, `INSERT INTO tags(id, slug, name_en, name_ar, created_at, updated_at) VALUES(?,?,?,?,?,?)`,
		t.ID, t.Slug, t.NameEN, t.NameAR, t.CreatedAt, t.UpdatedAt)
	if isUnique(err) {
		return api.Tag{}, fmt.Errorf("%w: tag %q already exists", ErrConflict, t.Slug)
	}
	if err != nil {
		return api.Tag{}, err
	}
	return t, nil
}

func (s *sqliteStore) CreateAuthor(ctx context.Context, a api.Author) (api.Author, error) {
	if strings.TrimSpace(a.Name) == "" {
		return api.Author{}, fmt.Errorf("%w: author needs a name", ErrInvalid)
	}
	if a.ID == "" {
		a.ID = api.NewID()
	}
	a.CreatedAt, a.UpdatedAt = stamp(a.CreatedAt, a.UpdatedAt)
	_, err := s.conn(ctx).ExecContext(ctx, `INSERT INTO authors(id, name, email, avatar_url, created_at, updated_at) VALUES(?,?,?,?,?,?)`,
		a.ID, a.Name, a.Email, a.AvatarURL, a.CreatedAt, a.UpdatedAt)
	if isUnique(err) {
		return api.Author{}, fmt.Errorf("%w: author %q already exists", ErrConflict, a.ID)
	}
	if err != nil {
		return api.Author{}, err
	}
	return a, nil
}

func (s *sqliteStore) GetAuthor(ctx context.Context, id string) (api.Author, error) {
	var a api.Author
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT id, name, email, avatar_url, created_at, updated_at FROM authors WHERE id = ?`, id)
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.AvatarURL, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Author{}, ErrNotFound
		}
		return api.Author{}, err
	}
	return a, nil
}

// stamp fills zero timestamps with now, in UTC.
func stamp(created, updated time.Time) (time.Time, time.Time) {
	if created.IsZero() {
		created = time.Now()
	}
	if updated.IsZero() {
		updated = created
	}
	return created.UTC(), updated.UTC()
}
