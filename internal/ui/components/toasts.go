package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/tasktimer/pkg/models"
)

var toastStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("23")).
	Padding(0, 1)

// Toasts renders the active notifications, oldest first.
type Toasts struct {
	Items []models.Notification
	Width int
}

func (t *Toasts) Render() string {
	if len(t.Items) == 0 {
		return ""
	}

	lines := make([]string, 0, len(t.Items))
	for _, n := range t.Items {
		style := toastStyle
		if t.Width > 0 {
			style = style.MaxWidth(t.Width)
		}
		lines = append(lines, style.Render(n.Message))
	}
	return lipgloss.PlaceHorizontal(t.Width, lipgloss.Right, strings.Join(lines, "\n"))
}
