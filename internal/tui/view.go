package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/petervdpas/jsondesk/internal/editor"
)

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#555555"))

	paneFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F0A868"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0A868")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1a1a1a")).
			Background(lipgloss.Color("#7EC8D8"))

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#dddddd"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#36CFC9"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))
)

func (m *Model) View() string {
	leftW, rightW := m.paneSizes()
	split := lipgloss.JoinHorizontal(lipgloss.Top, m.renderList(leftW), m.renderText(rightW))
	return lipgloss.JoinVertical(lipgloss.Left, split, m.renderStatus())
}

func (m *Model) renderList(width int) string {
	innerW := max(width-4, 4)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Files") + "\n\n")
	for i, f := range m.files {
		line := padRight(truncate(f, innerW), innerW)
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render(line) + "\n")
		} else {
			sb.WriteString(fileStyle.Render(line) + "\n")
		}
	}

	body := lipgloss.NewStyle().Width(innerW).Height(max(m.height-5, 1)).Render(sb.String())
	st := paneStyle
	if m.focus == focusList {
		st = paneFocusedStyle
	}
	return st.Width(width - 2).Render(body)
}

func (m *Model) renderText(width int) string {
	title := m.sess.Selection()
	if title == "" {
		title = "(no file)"
	}
	if m.loading {
		title += " loading…"
	}
	if m.saving {
		title += " saving…"
	}

	st := paneStyle
	if m.focus == focusText {
		st = paneFocusedStyle
	}
	return st.Width(width - 2).Render(titleStyle.Render(title) + "\n" + m.text.View())
}

func (m *Model) renderStatus() string {
	hint := hintStyle.Render("↑/↓ select · tab switch pane · ctrl+s save · q quit")
	if m.status == nil {
		return hint
	}
	st := infoStyle
	if m.status.Kind == editor.NoticeError {
		st = errorStyle
	}
	return st.Render(m.status.Text) + "  " + hint
}
