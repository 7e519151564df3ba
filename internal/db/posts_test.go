package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/mudawwana/pkg/api"
)

func setupTestDB(t *testing.T) (*Store, context.Context) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx, cancel := context.WithCancel(context.Background())

	store, closer, err := openSQLite(ctx, "sqlite://"+dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		closer.Close()
		cancel()
	})
	return store, ctx
}

type fixture struct {
	author api.Author
	goCat  api.Category
	webCat api.Category
	tagA   api.Tag
	tagB   api.Tag
	posts  []api.Post
}

// seedPosts creates count published posts one minute apart, newest first.
// Even posts go to the "go" category with tag "a"; odd ones to "web" with tag "b".
func seedPosts(t *testing.T, ctx context.Context, store *Store, count int) fixture {
	t.Helper()
	var f fixture
	var err error
	f.author, err = store.Taxonomy.CreateAuthor(ctx, api.Author{Name: "Sara"})
	require.NoError(t, err)
	f.goCat, err = store.Taxonomy.CreateCategory(ctx, api.Category{Slug: "go", NameEN: "Go", NameAR: "جو"})
	require.NoError(t, err)
	f.webCat, err = store.Taxonomy.CreateCategory(ctx, api.Category{Slug: "web", NameEN: "Web", NameAR: "الويب"})
	require.NoError(t, err)
	f.tagA, err = store.Taxonomy.CreateTag(ctx, api.Tag{Slug: "a", NameEN: "Alpha", NameAR: "ألفا"})
	require.NoError(t, err)
	f.tagB, err = store.Taxonomy.CreateTag(ctx, api.Tag{Slug: "b", NameEN: "Beta", NameAR: "بيتا"})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < count; i++ {
		cat, tag := f.goCat, f.tagA
		if i%2 == 1 {
			cat, tag = f.webCat, f.tagB
		}
		p, err := store.Posts.CreatePost(ctx, api.Post{
			ID:         fmt.Sprintf("post-%02d", i),
			Slug:       fmt.Sprintf("post-%02d", i),
			TitleEN:    fmt.Sprintf("Title %02d", i),
			TitleAR:    fmt.Sprintf("عنوان %02d", i),
			ContentEN:  "Hello **world**",
			ContentAR:  "مرحبا",
			CategoryID: cat.ID,
			AuthorID:   f.author.ID,
			Published:  true,
			TagSlugs:   []string{tag.Slug},
			CreatedAt:  now.Add(time.Duration(-i) * time.Minute),
		})
		require.NoError(t, err)
		f.posts = append(f.posts, p)
	}
	return f
}

func TestListPosts_Paging(t *testing.T) {
	store, ctx := setupTestDB(t)
	seedPosts(t, ctx, store, 5)

	page, err := store.Posts.ListPosts(ctx, api.ListQuery{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages())
	require.Len(t, page.Data, 2)
	assert.Equal(t, "post-00", page.Data[0].ID)
	assert.Equal(t, "post-01", page.Data[1].ID)

	page, err = store.Posts.ListPosts(ctx, api.ListQuery{Page: 3, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "post-04", page.Data[0].ID)
	assert.False(t, page.HasNext())
	assert.True(t, page.HasPrev())

	page, err = store.Posts.ListPosts(ctx, api.ListQuery{Page: 9, PerPage: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 5, page.Total)
}

func TestListPosts_LoadsRelations(t *testing.T) {
	store, ctx := setupTestDB(t)
	f := seedPosts(t, ctx, store, 2)

	page, err := store.Posts.ListPosts(ctx, api.ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	p := page.Data[0]
	require.NotNil(t, p.Category)
	assert.Equal(t, "go", p.Category.Slug)
	require.NotNil(t, p.Author)
	assert.Equal(t, f.author.Name, p.Author.Name)
	require.Len(t, p.Tags, 1)
	assert.Equal(t, "a", p.Tags[0].Slug)
	assert.Equal(t, []string{"a"}, p.TagSlugs)
}

func TestListPosts_Filters(t *testing.T) {
	store, ctx := setupTestDB(t)
	f := seedPosts(t, ctx, store, 6)

	page, err := store.Posts.ListPosts(ctx, api.ListQuery{CategorySlug: "web"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	for _, p := range page.Data {
		assert.Equal(t, f.webCat.ID, p.CategoryID)
	}

	page, err = store.Posts.ListPosts(ctx, api.ListQuery{TagSlug: "A"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	page, err = store.Posts.ListPosts(ctx, api.ListQuery{CategorySlug: "missing"})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Data)

	page, err = store.Posts.ListPosts(ctx, api.ListQuery{Since: f.posts[2].CreatedAt})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	page, err = store.Posts.ListPosts(ctx, api.ListQuery{Until: f.posts[4].CreatedAt})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestListPosts_HidesDrafts(t *testing.T) {
	store, ctx := setupTestDB(t)
	seedPosts(t, ctx, store, 1)
	_, err := store.Posts.CreatePost(ctx, api.Post{Slug: "draft", TitleEN: "Draft"})
	require.NoError(t, err)

	page, err := store.Posts.ListPosts(ctx, api.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	_, err = store.Posts.GetPostBySlug(ctx, "draft")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPostBySlug(t *testing.T) {
	store, ctx := setupTestDB(t)
	seedPosts(t, ctx, store, 2)

	p, err := store.Posts.GetPostBySlug(ctx, " POST-01 ")
	require.NoError(t, err)
	assert.Equal(t, "Title 01", p.TitleEN)
	assert.Equal(t, "web", p.Category.Slug)
	require.Len(t, p.Tags, 1)
	assert.Equal(t, "Beta", p.Tags[0].NameEN)

	_, err = store.Posts.GetPostBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePost_Errors(t *testing.T) {
	store, ctx := setupTestDB(t)
	seedPosts(t, ctx, store, 1)

	_, err := store.Posts.CreatePost(ctx, api.Post{Slug: "post-00", TitleEN: "dup"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.Posts.CreatePost(ctx, api.Post{Slug: "", TitleEN: "x"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = store.Posts.CreatePost(ctx, api.Post{Slug: "ghost-tag", TitleEN: "x", Published: true, TagSlugs: []string{"ghost"}})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = store.Posts.GetPostBySlug(ctx, "ghost-tag")
	assert.ErrorIs(t, err, ErrNotFound, "failed tag link must roll back the post")

	_, err = store.Posts.CreatePost(ctx, api.Post{Slug: "bad-cat", TitleEN: "x", CategoryID: "nope"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRecentAndFeatured(t *testing.T) {
	store, ctx := setupTestDB(t)
	seedPosts(t, ctx, store, 4)

	recent, err := store.Posts.RecentPosts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "post-00", recent[0].ID)

	featured, err := store.Posts.FeaturedPosts(ctx, 3)
	require.NoError(t, err)
	require.Len(t, featured, 3)
	assert.Equal(t, "post-00", featured[0].ID, "no flagged posts falls back to recent")

	_, err = store.Posts.CreatePost(ctx, api.Post{
		Slug: "old-star", TitleEN: "Old star", Published: true, Featured: true,
		CreatedAt: time.Now().Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	featured, err = store.Posts.FeaturedPosts(ctx, 3)
	require.NoError(t, err)
	require.Len(t, featured, 3)
	assert.Equal(t, "old-star", featured[0].Slug)
	assert.Equal(t, "post-00", featured[1].ID)
	assert.Equal(t, "post-01", featured[2].ID)
}

func TestRelatedPosts(t *testing.T) {
	store, ctx := setupTestDB(t)
	f := seedPosts(t, ctx, store, 6)

	related, err := store.Posts.RelatedPosts(ctx, f.posts[0], 5)
	require.NoError(t, err)
	require.Len(t, related, 2)
	for _, p := range related {
		assert.NotEqual(t, f.posts[0].ID, p.ID)
		assert.Equal(t, f.goCat.ID, p.CategoryID)
	}

	related, err = store.Posts.RelatedPosts(ctx, api.Post{ID: "x"}, 5)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestListTitles(t *testing.T) {
	store, ctx := setupTestDB(t)
	seedPosts(t, ctx, store, 3)

	titles, err := store.Posts.ListTitles(ctx)
	require.NoError(t, err)
	require.Len(t, titles, 3)
	assert.Equal(t, "Title 00", titles[0].TitleEN)
	assert.Equal(t, "عنوان 00", titles[0].TitleAR)
	assert.Empty(t, titles[0].ContentEN)
}

func TestTaxonomyCounts(t *testing.T) {
	store, ctx := setupTestDB(t)
	f := seedPosts(t, ctx, store, 5)
	_, err := store.Posts.CreatePost(ctx, api.Post{Slug: "draft", TitleEN: "Draft", CategoryID: f.goCat.ID, TagSlugs: []string{"a"}})
	require.NoError(t, err)
	_, err = store.Taxonomy.CreateCategory(ctx, api.Category{Slug: "empty", NameEN: "Empty"})
	require.NoError(t, err)

	cats, err := store.Taxonomy.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, []string{"Empty", "Go", "Web"}, []string{cats[0].NameEN, cats[1].NameEN, cats[2].NameEN})
	assert.Equal(t, []int{0, 3, 2}, []int{cats[0].PostCount, cats[1].PostCount, cats[2].PostCount})

	c, err := store.Taxonomy.GetCategoryBySlug(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, 3, c.PostCount)
	_, err = store.Taxonomy.GetCategoryBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	tags, err := store.Taxonomy.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, 3, tags[0].PostCount)
	assert.Equal(t, 2, tags[1].PostCount)

	tag, err := store.Taxonomy.GetTagBySlug(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, tag.PostCount)
	n, err := store.Taxonomy.TagPostCount(ctx, f.tagA.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = store.Taxonomy.CreateTag(ctx, api.Tag{Slug: "A", NameEN: "dup"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = store.Taxonomy.CreateCategory(ctx, api.Category{Slug: "x"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRunInTx_RollsBack(t *testing.T) {
	store, ctx := setupTestDB(t)
	err := store.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := store.Taxonomy.CreateCategory(ctx, api.Category{Slug: "tmp", NameEN: "Tmp"}); err != nil {
			return err
		}
		return ErrConflict
	})
	require.ErrorIs(t, err, ErrConflict)
	_, err = store.Taxonomy.GetCategoryBySlug(ctx, "tmp")
	assert.ErrorIs(t, err, ErrNotFound)
}
