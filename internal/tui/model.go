// Package tui is the terminal File Editor Client: a catalog list on the
// left, the file text on the right, notices in a status line.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/petervdpas/jsondesk/internal/editor"
)

type focusPane int

const (
	focusList focusPane = iota
	focusText
)

type loadDoneMsg struct{ res editor.LoadResult }

type saveDoneMsg struct{ res editor.SaveResult }

// Model is the bubbletea model around one editor.Session.
type Model struct {
	ctx  context.Context
	sess *editor.Session

	files  []string
	cursor int
	focus  focusPane

	text    textarea.Model
	loading bool
	saving  bool
	status  *editor.Notice

	width, height int
}

// New builds the model. ctx bounds every request the session makes.
func New(ctx context.Context, sess *editor.Session) *Model {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.Prompt = ""
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Blur()

	m := &Model{
		ctx:   ctx,
		sess:  sess,
		files: sess.Options(),
		text:  ta,
		focus: focusList,
	}
	m.SetSize(100, 30)
	return m
}

// Init fires the initial load of the first catalog entry.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return waitLoad(m.sess.Start(m.ctx))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case loadDoneMsg:
		res := msg.res
		if res.Stale {
			return m, nil
		}
		m.loading = false
		if res.Err == nil {
			m.text.SetValue(res.Text)
			m.status = nil
		} else {
			m.status = res.Notice
		}
		return m, nil

	case saveDoneMsg:
		m.saving = false
		n := msg.res.Notice
		m.status = &n
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	if m.focus == focusText {
		return m, m.updateText(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "ctrl+s":
		return m.save()
	case "tab":
		m.toggleFocus()
		return nil
	}

	if m.focus == focusText {
		if msg.String() == "esc" {
			m.toggleFocus()
			return nil
		}
		return m.updateText(msg)
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			return m.selectCursor()
		}
	case "down", "j":
		if m.cursor < len(m.files)-1 {
			m.cursor++
			return m.selectCursor()
		}
	case "enter", "r":
		return m.selectCursor()
	}
	return nil
}

// updateText routes a message to the textarea and copies any change into
// the session buffer.
func (m *Model) updateText(msg tea.Msg) tea.Cmd {
	before := m.text.Value()
	var cmd tea.Cmd
	m.text, cmd = m.text.Update(msg)
	if after := m.text.Value(); after != before {
		m.sess.SetBuffer(after)
	}
	return cmd
}

func (m *Model) selectCursor() tea.Cmd {
	if len(m.files) == 0 {
		return nil
	}
	ch, err := m.sess.Select(m.ctx, m.files[m.cursor])
	if err != nil {
		m.status = &editor.Notice{Kind: editor.NoticeError, Text: err.Error(), Err: err}
		return nil
	}
	m.loading = true
	return waitLoad(ch)
}

func (m *Model) save() tea.Cmd {
	m.saving = true
	return waitSave(m.sess.Save(m.ctx))
}

func (m *Model) toggleFocus() {
	if m.focus == focusList {
		m.focus = focusText
		m.text.Focus()
		return
	}
	m.focus = focusList
	m.text.Blur()
}

// SetSize lays both panes out for a terminal of the given size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	_, rightW := m.paneSizes()
	m.text.SetWidth(max(rightW-4, 10))
	m.text.SetHeight(max(height-6, 3))
}

func (m *Model) paneSizes() (left, right int) {
	total := m.width
	if total < 40 {
		total = 80
	}
	left = total * 25 / 100
	right = total - left
	return
}

// Status returns the text of the last notice, or "" if none.
func (m *Model) Status() string {
	if m.status == nil {
		return ""
	}
	return m.status.Text
}

func waitLoad(ch <-chan editor.LoadResult) tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{res: <-ch}
	}
}

func waitSave(ch <-chan editor.SaveResult) tea.Cmd {
	return func() tea.Msg {
		return saveDoneMsg{res: <-ch}
	}
}

// Run starts a full-screen program and blocks until the operator quits.
func Run(ctx context.Context, sess *editor.Session) error {
	p := tea.NewProgram(New(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func truncate(s string, w int) string {
	if w < 2 || len(s) <= w {
		return s
	}
	return s[:w-1] + "…"
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
