package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/pkg/api"
)

// pageResultMsg carries a loaded listing page and the row to select on it.
type pageResultMsg struct {
	page   api.PostPage
	cursor int
	err    error
	dur    time.Duration
}

// showPostResultMsg carries a full post and its rendered body.
type showPostResultMsg struct {
	post api.Post
	doc  render.Document
	err  error
	dur  time.Duration
}

func pageCmd(ctx context.Context, src Source, page, cursor int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		res, err := src.Page(ctx, page)
		return pageResultMsg{page: res, cursor: cursor, err: err, dur: time.Since(start)}
	}
}

func showPostCmd(ctx context.Context, src Source, slug string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		p, doc, err := src.Show(ctx, slug)
		return showPostResultMsg{post: p, doc: doc, err: err, dur: time.Since(start)}
	}
}
