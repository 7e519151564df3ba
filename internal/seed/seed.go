// Package seed loads authors, categories, tags and posts from a YAML file into
// the store. Loading is idempotent: records that already exist are skipped.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mithrel/mudawwana/internal/db"
	"github.com/mithrel/mudawwana/pkg/api"
)

//go:embed default.yaml
var defaultSeed []byte

// Default returns the embedded demo content.
func Default() []byte { return defaultSeed }

type File struct {
	Authors    []api.Author   `yaml:"authors"`
	Categories []api.Category `yaml:"categories"`
	Tags       []api.Tag      `yaml:"tags"`
	Posts      []Post         `yaml:"posts"`
}

// Post references its category by slug and its author by id.
type Post struct {
	ID         string    `yaml:"id"`
	Slug       string    `yaml:"slug"`
	TitleEN    string    `yaml:"title_en"`
	TitleAR    string    `yaml:"title_ar"`
	ExcerptEN  string    `yaml:"excerpt_en"`
	ExcerptAR  string    `yaml:"excerpt_ar"`
	ContentEN  string    `yaml:"content_en"`
	ContentAR  string    `yaml:"content_ar"`
	CoverImage string    `yaml:"cover_image"`
	Language   string    `yaml:"language"`
	Category   string    `yaml:"category"`
	Author     string    `yaml:"author"`
	Tags       []string  `yaml:"tags"`
	Draft      bool      `yaml:"draft"`
	Featured   bool      `yaml:"featured"`
	CreatedAt  time.Time `yaml:"created_at"`
}

// Result counts what a Load inserted and skipped.
type Result struct {
	Authors, Categories, Tags, Posts int
	Skipped                          int
}

// Parse decodes a seed file. Unknown fields are rejected.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse seed: %w", err)
	}
	return f, nil
}

// Load writes f into store inside one transaction.
func Load(ctx context.Context, store *db.Store, log *zap.Logger, f File) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var res Result
	err := store.RunInTx(ctx, func(ctx context.Context) error {
		res = Result{}
		for _, a := range f.Authors {
			ok, err := skipConflict(store.Taxonomy.CreateAuthor(ctx, a))
			if err != nil {
				return fmt.Errorf("author %q: %w", a.Name, err)
			}
			res.count(ok, &res.Authors)
		}
		for _, c := range f.Categories {
			ok, err := skipConflict(store.Taxonomy.CreateCategory(ctx, c))
			if err != nil {
				return fmt.Errorf("category %q: %w", c.Slug, err)
			}
			res.count(ok, &res.Categories)
		}
		for _, t := range f.Tags {
			ok, err := skipConflict(store.Taxonomy.CreateTag(ctx, t))
			if err != nil {
				return fmt.Errorf("tag %q: %w", t.Slug, err)
			}
			res.count(ok, &res.Tags)
		}
		for _, sp := range f.Posts {
			p, err := toPost(ctx, store, sp)
			if err != nil {
				return fmt.Errorf("post %q: %w", sp.Slug, err)
			}
			ok, err := skipConflict(store.Posts.CreatePost(ctx, p))
			if err != nil {
				return fmt.Errorf("post %q: %w", sp.Slug, err)
			}
			res.count(ok, &res.Posts)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	log.Info("seed loaded",
		zap.Int("authors", res.Authors),
		zap.Int("categories", res.Categories),
		zap.Int("tags", res.Tags),
		zap.Int("posts", res.Posts),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func (r *Result) count(inserted bool, n *int) {
	if inserted {
		*n++
		return
	}
	r.Skipped++
}

// skipConflict reports whether a create inserted a row, treating an existing
// row as a skip rather than an error.
func skipConflict[T any](_ T, err error) (bool, error) {
	if errors.Is(err, db.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}

func toPost(ctx context.Context, store *db.Store, sp Post) (api.Post, error) {
	p := api.Post{
		ID:         sp.ID,
		Slug:       sp.Slug,
		TitleEN:    sp.TitleEN,
		TitleAR:    sp.TitleAR,
		ExcerptEN:  sp.ExcerptEN,
		ExcerptAR:  sp.ExcerptAR,
		ContentEN:  sp.ContentEN,
		ContentAR:  sp.ContentAR,
		CoverImage: sp.CoverImage,
		AuthorID:   sp.Author,
		Published:  !sp.Draft,
		Featured:   sp.Featured,
		TagSlugs:   sp.Tags,
		CreatedAt:  sp.CreatedAt,
	}
	if sp.Language != "" {
		l, ok := api.ParseLang(sp.Language)
		if !ok {
			return api.Post{}, fmt.Errorf("%w: language %q", db.ErrInvalid, sp.Language)
		}
		p.Language = l
	}
	if sp.Category != "" {
		c, err := store.Taxonomy.GetCategoryBySlug(ctx, sp.Category)
		if err != nil {
			return api.Post{}, fmt.Errorf("category %q: %w", sp.Category, err)
		}
		p.CategoryID = c.ID
	}
	return p, nil
}
