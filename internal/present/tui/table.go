package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/mudawwana/internal/present/format"
	"github.com/mithrel/mudawwana/internal/render"
	"github.com/mithrel/mudawwana/pkg/api"
)

// Source supplies listing pages and full posts to the browser.
type Source interface {
	Page(ctx context.Context, page int) (api.PostPage, error)
	Show(ctx context.Context, slug string) (api.Post, render.Document, error)
}

type Options struct {
	Post   format.PostOptions
	Input  io.Reader
	Output io.Writer
}

// Browse opens an interactive table over the listing, starting at first.
// Moving past the last row loads the next page; enter shows the post.
func Browse(ctx context.Context, src Source, first api.PostPage, opts Options) error {
	m := newModel(ctx, src, first, opts.Post)
	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}

// lastRow as a cursor target selects the final row of the loaded page.
const lastRow = -1

type model struct {
	ctx          context.Context
	src          Source
	table        table.Model
	page         api.PostPage
	opts         format.PostOptions
	width        int
	height       int
	status       string
	lastDuration time.Duration
	loading      bool
	modal        *postModal
}

func newModel(ctx context.Context, src Source, first api.PostPage, opts format.PostOptions) model {
	m := model{ctx: ctx, src: src, page: first, opts: opts}
	m.initTable()
	return m
}

func (m *model) initTable() {
	cols := m.columnsFor(28, 40, 16, 20, 10)
	m.table = table.New(table.WithColumns(cols), table.WithFocused(true))
	m.updateRows()
	m.applyStyles()
}

func (m *model) updateRows() {
	l := m.opts.Lang
	rows := make([]table.Row, 0, len(m.page.Data))
	for _, p := range m.page.Data {
		cat := ""
		if p.Category != nil {
			cat = p.Category.Name(l)
		}
		rows = append(rows, table.Row{
			p.Slug,
			p.Title(l),
			cat,
			strings.Join(p.TagNames(l), ", "),
			p.CreatedAt.Local().Format(time.DateOnly),
		})
	}
	m.table.SetRows(rows)
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageResultMsg:
		m.loading = false
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Load failed: %v", msg.err)
			return m, nil
		}
		m.page = msg.page
		m.updateRows()
		cur := msg.cursor
		if cur < 0 || cur >= len(m.page.Data) {
			cur = len(m.page.Data) - 1
		}
		m.table.SetCursor(max(cur, 0))
		m.status = ""
		return m, nil
	case showPostResultMsg:
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Show failed: %v", msg.err)
			m.modal = nil
			return m, nil
		}
		if m.modal != nil && m.modal.post.Slug == msg.post.Slug {
			m.modal.setPost(msg.post, msg.doc, m.opts)
		}
		m.status = ""
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		if m.modal != nil {
			m.modal.resizeForTerm(m.width, m.height)
		}
		return m, nil
	case tea.KeyMsg:
		if m.modal != nil {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "q", "esc":
				m.modal = nil
				return m, nil
			}
			var cmd tea.Cmd
			m.modal, cmd = m.modal.update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.page.Data) {
				sel := m.page.Data[idx]
				m.modal = newPostModal(sel, m.width, m.height)
				m.status = fmt.Sprintf("Loading %s…", sel.Slug)
				return m, showPostCmd(m.ctx, m.src, sel.Slug)
			}
			return m, nil
		}
		if page, cursor, ok := m.turn(msg.String()); ok {
			m.loading = true
			m.status = fmt.Sprintf("Loading page %d…", page)
			return m, pageCmd(m.ctx, m.src, page, cursor)
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// turn reports which page key moves to and where the cursor lands on it.
// Arrow keys only turn the page when the cursor is already on an edge row.
func (m model) turn(key string) (page, cursor int, ok bool) {
	if m.loading {
		return 0, 0, false
	}
	cur := m.table.Cursor()
	switch key {
	case "n", "right":
		if m.page.HasNext() {
			return m.page.Next(), 0, true
		}
	case "p", "left":
		if m.page.HasPrev() {
			return m.page.Prev(), 0, true
		}
	case "down", "j":
		if cur >= len(m.page.Data)-1 && m.page.HasNext() {
			return m.page.Next(), 0, true
		}
	case "up", "k":
		if cur <= 0 && m.page.HasPrev() {
			return m.page.Prev(), lastRow, true
		}
	}
	return 0, 0, false
}

func (m model) renderFooter() string {
	left := "↑/↓ navigate • ←/→ page • enter=show • q=exit"

	var right string
	if m.status != "" {
		if m.lastDuration > 0 {
			right = fmt.Sprintf("%s (%s) • ", m.status, m.lastDuration.Round(time.Millisecond))
		} else {
			right = m.status + " • "
		}
	}
	right += fmt.Sprintf("page %d/%d • %d posts ", m.page.Page, m.page.TotalPages(), m.page.Total)

	space := max(m.table.Width()-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", space) + right
}

func (m model) View() string {
	if m.modal != nil {
		return m.modal.view(m.width, m.height)
	}
	if len(m.page.Data) == 0 {
		return "(no posts)\n" + m.renderFooter() + "\n"
	}
	return m.table.View() + "\n" + m.renderFooter() + "\n"
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetHeight(max(6, m.height-1))
	m.table.SetWidth(m.width)
	avail := m.width - 10 // cell padding
	if avail < 50 {
		return
	}
	slugW, dateW := 28, 10
	if avail < slugW+dateW+60 {
		slugW = 16
	}
	rem := avail - slugW - dateW
	catW := max(rem/5, 8)
	tagsW := max(rem/4, 8)
	titleW := max(rem-catW-tagsW, 12)
	m.table.SetColumns(m.columnsFor(slugW, titleW, catW, tagsW, dateW))
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	if m.opts.Headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.
			BorderBottom(false).
			Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

// columnsFor returns columns with or without titles based on opts.Headers.
func (m *model) columnsFor(slugW, titleW, catW, tagsW, dateW int) []table.Column {
	titles := []string{"", "", "", "", ""}
	if m.opts.Headers {
		titles = []string{"Slug", "Title", "Category", "Tags", "Published"}
	}
	return []table.Column{
		{Title: titles[0], Width: slugW},
		{Title: titles[1], Width: titleW},
		{Title: titles[2], Width: catW},
		{Title: titles[3], Width: tagsW},
		{Title: titles[4], Width: dateW},
	}
}
