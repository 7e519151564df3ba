package db

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/mithrel/mudawwana/pkg/api"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid input")
)

// PostRepo reads and writes articles.
type PostRepo interface {
	ListPosts(ctx context.Context, q api.ListQuery) (api.PostPage, error)
	GetPostBySlug(ctx context.Context, slug string) (api.Post, error)
	RecentPosts(ctx context.Context, limit int) ([]api.Post, error)
	FeaturedPosts(ctx context.Context, limit int) ([]api.Post, error)
	RelatedPosts(ctx context.Context, p api.Post, limit int) ([]api.Post, error)
	ListTitles(ctx context.Context) ([]api.Post, error)
	CreatePost(ctx context.Context, p api.Post) (api.Post, error)
}

// TaxonomyRepo covers categories, tags and authors.
type TaxonomyRepo interface {
	ListCategories(ctx context.Context) ([]api.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (api.Category, error)
	CategoryPostCount(ctx context.Context, categoryID string) (int, error)
	ListTags(ctx context.Context) ([]api.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (api.Tag, error)
	TagPostCount(ctx context.Context, tagID string) (int, error)
	CreateCategory(ctx context.Context, c api.Category) (api.Category, error)
	CreateTag(ctx context.Context, t api.Tag) (api.Tag, error)
	CreateAuthor(ctx context.Context, a api.Author) (api.Author, error)
	GetAuthor(ctx context.Context, id string) (api.Author, error)
}

type CommentRepo interface {
	ListComments(ctx context.Context, postID string) ([]api.Comment, error)
	AddComment(ctx context.Context, c api.Comment) (api.Comment, error)
	DeleteComment(ctx context.Context, id, readerID string) error
}

type ReactionRepo interface {
	ReactionCounts(ctx context.Context, postID string) (api.ReactionCounts, error)
	UserReaction(ctx context.Context, postID, readerID string) (api.ReactionType, error)
	SetReaction(ctx context.Context, postID, readerID string, typ api.ReactionType) error
	RemoveReaction(ctx context.Context, postID, readerID string) error
}

type NewsletterRepo interface {
	Subscribe(ctx context.Context, email string) (api.SubscribeResult, error)
	Unsubscribe(ctx context.Context, email string) (api.SubscribeResult, error)
	ListSubscribers(ctx context.Context, activeOnly bool) ([]api.Subscriber, error)
}

// Store groups the repositories backed by one database.
type Store struct {
	Posts      PostRepo
	Taxonomy   TaxonomyRepo
	Comments   CommentRepo
	Reactions  ReactionRepo
	Newsletter NewsletterRepo

	tx TxRunner
}

// RunInTx runs fn inside a transaction carried by the context. Nested calls
// reuse the outer transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTx(ctx, fn)
}

// Open returns a Store based on a URL. Only sqlite:// (or a bare path) is supported.
func Open(ctx context.Context, url string) (*Store, io.Closer, error) {
	if i := strings.Index(url, "://"); i >= 0 && !strings.HasPrefix(url, "sqlite://") {
		return nil, nil, errors.New("unsupported database scheme: " + url[:i])
	}
	return openSQLite(ctx, url)
}
