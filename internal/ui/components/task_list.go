package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/tasktimer/internal/render"
)

var (
	rowStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	selectedRowStyle = rowStyle.
				BorderForeground(lipgloss.Color("12"))

	completedNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Strikethrough(true)

	clockStyle = lipgloss.NewStyle().Bold(true)

	warningClockStyle = clockStyle.Foreground(lipgloss.Color("214"))

	dangerClockStyle = clockStyle.Foreground(lipgloss.Color("196"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	disabledButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("238"))

	listHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				Padding(0, 1)
)

// TaskList renders a projected task list with one bordered box per task.
type TaskList struct {
	View    render.View
	Cursor  int
	Focused bool
	Width   int
	Title   string
}

func NewTaskList(width int) *TaskList {
	return &TaskList{
		View:  render.Project(nil),
		Width: width,
		Title: "Tasks",
	}
}

// SetView replaces the rows, keeping the cursor in range.
func (l *TaskList) SetView(v render.View) {
	l.View = v
	l.clampCursor()
}

// Selected returns the row under the cursor.
func (l *TaskList) Selected() (render.Row, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.View.Rows) {
		return render.Row{}, false
	}
	return l.View.Rows[l.Cursor], true
}

func (l *TaskList) MoveUp() {
	if l.Cursor > 0 {
		l.Cursor--
	}
}

func (l *TaskList) MoveDown() {
	if l.Cursor < len(l.View.Rows)-1 {
		l.Cursor++
	}
}

func (l *TaskList) clampCursor() {
	if l.Cursor >= len(l.View.Rows) {
		l.Cursor = len(l.View.Rows) - 1
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
}

func (l *TaskList) Render() string {
	var content string
	if l.View.Empty {
		content = placeholderStyle.Render(l.View.EmptyMessage)
	} else {
		boxes := make([]string, 0, len(l.View.Rows))
		for i, row := range l.View.Rows {
			boxes = append(boxes, l.renderRow(row, l.Focused && i == l.Cursor))
		}
		content = strings.Join(boxes, "\n")
	}

	if l.Title == "" {
		return content
	}
	return listHeaderStyle.Render(l.Title) + "\n" + content
}

func (l *TaskList) renderRow(row render.Row, selected bool) string {
	style := rowStyle
	if selected {
		style = selectedRowStyle
	}

	clock := clockStyle
	switch row.Severity {
	case render.SeverityDanger:
		clock = dangerClockStyle
	case render.SeverityWarning:
		clock = warningClockStyle
	}

	toggle := buttonStyle
	if row.ToggleDisabled {
		toggle = disabledButtonStyle
	}

	controls := fmt.Sprintf("%s %s %s",
		clock.Render(row.Clock),
		toggle.Render("["+row.ToggleLabel+"]"),
		buttonStyle.Render("["+l.View.DeleteLabel+"]"),
	)

	innerWidth := l.Width - 4
	nameWidth := innerWidth - lipgloss.Width(controls) - 1
	if nameWidth < 1 {
		nameWidth = 1
	}

	nameStyle := lipgloss.NewStyle().Width(nameWidth)
	if row.Completed {
		nameStyle = completedNameStyle.Width(nameWidth)
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, nameStyle.Render(row.Name), " ", controls)
	if l.Width > 2 {
		style = style.Width(l.Width - 2)
	}
	return style.Render(line)
}
