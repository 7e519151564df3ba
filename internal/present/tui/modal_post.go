package tui

import (
	"bytes"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/mudawwana/internal/present/format"
	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/pkg/api"
)

// postModal shows one article rendered through glamour in a scrollable
// viewport, centred over the table.
type postModal struct {
	post    api.Post
	vp      viewport.Model
	width   int
	height  int
	padX    int
	padY    int
	box     lipgloss.Style
	content string
}

func newPostModal(p api.Post, termW, termH int) *postModal {
	m := &postModal{post: p, padX: 2, padY: 1}
	m.resizeForTerm(termW, termH)
	m.setContent("Loading…")
	return m
}

func (m *postModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := int(float64(termW) * 0.7)
	if termW < 80 {
		w = termW - 4
	}
	if w < 40 {
		w = max(32, termW-2)
	}
	h := int(float64(termH) * 0.8)
	if termH < 20 {
		h = termH - 2
	}
	if h < 10 {
		h = max(8, termH-1)
	}
	m.width, m.height = w, h
	// lipgloss sizes exclude the border.
	m.box = lipgloss.NewStyle().
		Width(w-2).
		Height(h-2).
		Padding(m.padY, m.padX).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))

	innerW := max(w-2-m.padX*2, 10)
	innerH := max(h-2-m.padY*2, 5)
	if m.vp.Width == 0 {
		m.vp = viewport.New(innerW, innerH)
	} else {
		m.vp.Width = innerW
		m.vp.Height = innerH
	}
	m.vp.SetContent(m.content)
}

// setPost renders p with the shared pretty renderer, wrapped to the modal.
func (m *postModal) setPost(p api.Post, doc render.Document, opts format.PostOptions) {
	m.post = p
	opts.Width = m.vp.Width
	var buf bytes.Buffer
	if err := format.WritePrettyPost(&buf, p, doc, opts); err != nil {
		m.setContent("render failed: " + err.Error())
		return
	}
	m.setContent(buf.String())
}

func (m *postModal) setContent(s string) {
	m.content = s
	m.vp.SetContent(s)
}

func (m *postModal) update(msg tea.Msg) (*postModal, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *postModal) view(termW, termH int) string {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	return lipgloss.Place(termW, termH, lipgloss.Center, lipgloss.Center, m.box.Render(m.vp.View()))
}
