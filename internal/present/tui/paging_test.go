package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/mudawwana/internal/present/format"
	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/pkg/api"
)

func makePosts(prefix string, n int) []api.Post {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	out := make([]api.Post, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, api.Post{
			ID:        fmt.Sprintf("%s-%d", prefix, i),
			Slug:      fmt.Sprintf("%s-%d", prefix, i),
			TitleEN:   "Title " + prefix,
			TitleAR:   "عنوان " + prefix,
			ContentEN: "Some **body** text.",
			Tags:      []api.Tag{{Slug: "go", NameEN: "Go", NameAR: "جو"}},
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return out
}

// fakeSource serves two pages: three posts, then two.
type fakeSource struct {
	pages map[int]api.PostPage
	shown []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{pages: map[int]api.PostPage{
		1: {Data: makePosts("a", 3), Total: 5, Page: 1, PerPage: 3},
		2: {Data: makePosts("b", 2), Total: 5, Page: 2, PerPage: 3},
	}}
}

func (f *fakeSource) Page(ctx context.Context, page int) (api.PostPage, error) {
	p, ok := f.pages[page]
	if !ok {
		return api.PostPage{}, errors.New("no such page")
	}
	return p, nil
}

func (f *fakeSource) Show(ctx context.Context, slug string) (api.Post, render.Document, error) {
	f.shown = append(f.shown, slug)
	for _, pg := range f.pages {
		for _, p := range pg.Data {
			if p.Slug == slug {
				return p, render.Render(p.ContentEN), nil
			}
		}
	}
	return api.Post{}, nil, errors.New("not found")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(src *fakeSource, lang api.Lang) model {
	m := newModel(context.Background(), src, src.pages[1], format.PostOptions{Lang: lang, Headers: true})
	m.table.SetHeight(10)
	return m
}

func step(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok)
	return nm, cmd
}

func TestPagingTriggers(t *testing.T) {
	m := newTestModel(newFakeSource(), api.LangEN)

	_, _, ok := m.turn("up")
	require.False(t, ok, "no page before the first")

	m.table.SetCursor(1)
	_, _, ok = m.turn("down")
	require.False(t, ok, "cursor not on the last row")

	m.table.SetCursor(2)
	page, cursor, ok := m.turn("down")
	require.True(t, ok)
	require.Equal(t, 2, page)
	require.Equal(t, 0, cursor)

	page, _, ok = m.turn("n")
	require.True(t, ok)
	require.Equal(t, 2, page)

	m.loading = true
	_, _, ok = m.turn("n")
	require.False(t, ok, "no second fetch while one is in flight")
}

func TestPagingAcrossPages(t *testing.T) {
	m := newTestModel(newFakeSource(), api.LangEN)
	m.table.SetCursor(2)

	m, cmd := step(t, m, key("down"))
	require.NotNil(t, cmd)
	require.True(t, m.loading)
	m, _ = step(t, m, cmd())
	require.False(t, m.loading)
	require.Equal(t, 2, m.page.Page)
	require.Len(t, m.table.Rows(), 2)
	require.Equal(t, "b-0", m.table.SelectedRow()[0])

	_, _, ok := m.turn("n")
	require.False(t, ok, "no page after the last")

	m, cmd = step(t, m, key("up"))
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())
	require.Equal(t, 1, m.page.Page)
	require.Equal(t, 2, m.table.Cursor(), "going back lands on the last row")
}

func TestPagingLoadFailureKeepsRows(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(src, api.LangEN)
	delete(src.pages, 2)

	m, cmd := step(t, m, key("n"))
	m, _ = step(t, m, cmd())
	require.Equal(t, 1, m.page.Page)
	require.Len(t, m.table.Rows(), 3)
	require.Contains(t, m.status, "Load failed")
	require.False(t, m.loading)
}

func TestRowsFollowLanguage(t *testing.T) {
	m := newTestModel(newFakeSource(), api.LangAR)
	row := m.table.Rows()[0]
	require.Equal(t, "a-0", row[0])
	require.Equal(t, "عنوان a", row[1])
	require.Equal(t, "جو", row[3])

	m.opts.Headers = false
	require.Empty(t, m.columnsFor(1, 1, 1, 1, 1)[1].Title)
}

func TestShowModal(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(src, api.LangEN)
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m.table.SetCursor(1)

	m, cmd := step(t, m, key("enter"))
	require.NotNil(t, m.modal)
	require.Equal(t, "Loading…", m.modal.content)
	m, _ = step(t, m, cmd())
	require.Equal(t, []string{"a-1"}, src.shown)
	require.Equal(t, "a-1", m.modal.post.Slug)
	require.NotEqual(t, "Loading…", m.modal.content)
	require.NotEmpty(t, m.View())

	// Keys scroll the modal; esc closes it without leaving the browser.
	m, cmd = step(t, m, key("esc"))
	require.Nil(t, m.modal)
	require.Nil(t, cmd)

	_, cmd = step(t, m, key("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestShowFailureClosesModal(t *testing.T) {
	src := newFakeSource()
	m := newTestModel(src, api.LangEN)
	src.pages = nil

	m, cmd := step(t, m, key("enter"))
	m, _ = step(t, m, cmd())
	require.Nil(t, m.modal)
	require.Contains(t, m.status, "Show failed")
}

func TestEmptyListing(t *testing.T) {
	src := &fakeSource{pages: map[int]api.PostPage{1: {Page: 1, PerPage: 10}}}
	m := newTestModel(src, api.LangEN)
	require.Contains(t, m.View(), "(no posts)")

	m, cmd := step(t, m, key("enter"))
	require.Nil(t, cmd)
	require.Nil(t, m.modal)
}
