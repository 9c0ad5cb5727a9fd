package ui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	logoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("12")).Bold(true)
	descriptionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const logo = `
 _            _    _   _
| |_ __ _ ___| | _| |_(_)_ __ ___   ___ _ __
| __/ _' / __| |/ / __| | '_ ' _ \ / _ \ '__|
| || (_| \__ \   <| |_| | | | | | |  __/ |
 \__\__,_|___/_|\_\\__|_|_| |_| |_|\___|_|
`

// frontEnd is one way of running the timers, named by its subcommand.
type frontEnd struct {
	command     string
	description string
}

var frontEnds = []frontEnd{
	{command: "tui", description: "count down tasks in this terminal"},
	{command: "web", description: "serve the task list to a browser"},
	{command: "mcp", description: "expose the task tools to an MCP client over stdio"},
}

// MenuModel picks a front end when tasktimer is started without arguments.
// Choices can be reached with j/k or by their number.
type MenuModel struct {
	choices  []frontEnd
	cursor   int
	selected string
	quitting bool
}

func NewMenuModel() MenuModel {
	return MenuModel{choices: frontEnds}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j", "tab":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.choices) - 1
	case "enter":
		m.selected = m.choices[m.cursor].command
		return m, tea.Quit
	default:
		if n, err := strconv.Atoi(key.String()); err == nil && n >= 1 && n <= len(m.choices) {
			m.cursor = n - 1
			m.selected = m.choices[m.cursor].command
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting || m.selected != "" {
		return ""
	}

	var s strings.Builder
	s.WriteString(logoStyle.Render(logo))
	s.WriteString("\n\n")

	width := 0
	for _, c := range m.choices {
		width = max(width, len(c.command))
	}
	for i, c := range m.choices {
		label := strconv.Itoa(i+1) + ". " + c.command + strings.Repeat(" ", width-len(c.command))
		if m.cursor == i {
			s.WriteString(selectedItemStyle.Render("> " + label))
		} else {
			s.WriteString(itemStyle.Render("  " + label))
		}
		s.WriteString("  " + descriptionStyle.Render(c.description))
		s.WriteString("\n")
	}

	s.WriteString("\n(j/k or 1-3 to choose, enter to start, q to quit)\n")
	return s.String()
}

// Selected is the subcommand picked, or "" when the menu was dismissed.
func (m MenuModel) Selected() string {
	return m.selected
}

func RunMenu() (string, error) {
	p := tea.NewProgram(NewMenuModel())
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	return finalModel.(MenuModel).Selected(), nil
}
