package seed

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mithrel/mudawwana/internal/db"
	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/pkg/api"
)

func setupTestDB(t *testing.T) (*db.Store, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	store, closer, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		closer.Close()
		cancel()
	})
	return store, ctx
}

func TestDefault_LoadsAndIsIdempotent(t *testing.T) {
	store, ctx := setupTestDB(t)
	f, err := Parse(bytes.NewReader(Default()))
	require.NoError(t, err)

	res, err := Load(ctx, store, zap.NewNop(), f)
	require.NoError(t, err)
	assert.Equal(t, Result{Authors: 1, Categories: 4, Tags: 6, Posts: 5}, res)

	res, err = Load(ctx, store, zap.NewNop(), f)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 16}, res)

	page, err := store.Posts.ListPosts(ctx, api.ListQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total, "drafts stay hidden")
	assert.Equal(t, "hunting-jank", page.Data[0].Slug)
}

func TestDefault_BodiesRender(t *testing.T) {
	f, err := Parse(bytes.NewReader(Default()))
	require.NoError(t, err)
	for _, p := range f.Posts {
		for _, body := range []string{p.ContentEN, p.ContentAR} {
			doc := render.Render(body)
			assert.NotEmpty(t, doc, p.Slug)
			assert.Equal(t, strings.Count(body, "```")/2, doc.Count(render.KindCode), p.Slug)
		}
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("posts:\n  - slug: a\n    colour: red\n"))
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Posts)
}

func TestLoad_UnknownCategoryRollsBack(t *testing.T) {
	store, ctx := setupTestDB(t)
	f := File{
		Tags:  []api.Tag{{Slug: "x", NameEN: "X"}},
		Posts: []Post{{Slug: "p", TitleEN: "P", Category: "missing"}},
	}
	_, err := Load(ctx, store, nil, f)
	require.ErrorIs(t, err, db.ErrNotFound)

	tags, err := store.Taxonomy.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestLoad_BadLanguage(t *testing.T) {
	store, ctx := setupTestDB(t)
	_, err := Load(ctx, store, nil, File{Posts: []Post{{Slug: "p", TitleEN: "P", Language: "fr"}}})
	assert.ErrorIs(t, err, db.ErrInvalid)
}
