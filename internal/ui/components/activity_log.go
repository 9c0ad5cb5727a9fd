package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	entryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	scrollbarTrackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236"))

	scrollbarHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

// ActivityLog keeps every notification ever shown in a scrollable viewport.
type ActivityLog struct {
	viewport viewport.Model
	entries  []string
	ready    bool
}

func NewActivityLog(width, height int) *ActivityLog {
	l := &ActivityLog{}
	l.SetSize(width, height)
	return l
}

func (l *ActivityLog) SetSize(width, height int) {
	vpWidth := width
	if width > 0 {
		vpWidth = width - 1
	}
	if !l.ready {
		l.viewport = viewport.New(vpWidth, height)
		l.ready = true
	} else {
		l.viewport.Width = vpWidth
		l.viewport.Height = height
	}
	l.updateContent()
}

// Append records message at the given time and scrolls to it.
func (l *ActivityLog) Append(at time.Time, message string) {
	l.entries = append(l.entries, fmt.Sprintf("%s %s",
		timestampStyle.Render(at.Format("15:04:05")), message))
	l.updateContent()
}

func (l *ActivityLog) Len() int {
	return len(l.entries)
}

func (l *ActivityLog) updateContent() {
	content := strings.Join(l.entries, "\n")
	if width := l.viewport.Width; width > 0 {
		content = entryStyle.Width(width).Render(content)
	} else {
		content = entryStyle.Render(content)
	}
	l.viewport.SetContent(content)
	l.viewport.GotoBottom()
}

func (l *ActivityLog) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	return cmd
}

func (l *ActivityLog) View() string {
	if !l.ready {
		return ""
	}

	if l.viewport.TotalLineCount() <= l.viewport.Height {
		return l.viewport.View()
	}

	h := l.viewport.Height
	handlePos := int(float64(h-1) * l.viewport.ScrollPercent())

	var sb strings.Builder
	for i := 0; i < h; i++ {
		if i == handlePos {
			sb.WriteString(scrollbarHandleStyle.Render("┃"))
		} else {
			sb.WriteString(scrollbarTrackStyle.Render("│"))
		}
		if i < h-1 {
			sb.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, l.viewport.View(), sb.String())
}
