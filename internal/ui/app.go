package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/tasktimer/internal/render"
	"github.com/nick-dorsch/tasktimer/internal/timer"
	"github.com/nick-dorsch/tasktimer/internal/ui/components"
	"github.com/nick-dorsch/tasktimer/pkg/models"
)

const (
	defaultWidth  = 60
	logHeight     = 5
	actionTimeout = 5 * time.Second
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	focusedInputStyle = inputStyle.
				BorderForeground(lipgloss.Color("12"))

	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(1, 3).
			Bold(true)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Timers is the slice of the timer controller the terminal UI drives.
type Timers interface {
	AddTask(ctx context.Context, name string) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64) error
	Tasks(ctx context.Context) ([]models.Task, error)
}

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

type tasksLoadedMsg struct {
	tasks []models.Task
	err   error
}

type taskAddedMsg struct {
	err error
}

type actionDoneMsg struct {
	err error
}

// Model is the terminal front end: an input, the task list, notification
// toasts and a log of past notifications.
type Model struct {
	timers Timers
	bridge *Bridge

	input  textinput.Model
	list   *components.TaskList
	toasts *components.Toasts
	log    *components.ActivityLog
	seen   map[string]bool

	focus  focusArea
	prompt string
	err    error
	width  int
	height int
}

func NewModel(timers Timers, bridge *Bridge) *Model {
	input := textinput.New()
	input.Placeholder = "What are you working on?"
	input.CharLimit = 200
	input.Width = defaultWidth - 6
	input.Focus()

	return &Model{
		timers: timers,
		bridge: bridge,
		input:  input,
		list:   components.NewTaskList(defaultWidth),
		toasts: &components.Toasts{Width: defaultWidth},
		log:    components.NewActivityLog(defaultWidth, logHeight),
		seen:   make(map[string]bool),
		width:  defaultWidth,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.loadTasks(),
		m.bridge.waitForTasks(),
		m.bridge.waitForNotifications(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.Width = msg.Width
		m.toasts.Width = msg.Width
		m.log.SetSize(msg.Width, logHeight)
		m.input.Width = msg.Width - 6

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		cmds = append(cmds, m.log.Update(msg))

	case tasksChangedMsg:
		cmds = append(cmds, m.loadTasks(), m.bridge.waitForTasks())

	case tasksLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.list.SetView(render.Project(msg.tasks))
		}

	case notificationsMsg:
		m.setNotifications(msg.active)
		cmds = append(cmds, m.bridge.waitForNotifications())

	case taskAddedMsg:
		switch {
		case errors.Is(msg.err, timer.ErrEmptyName):
			m.prompt = render.EmptyNamePrompt
		case msg.err != nil:
			m.err = msg.err
		default:
			m.input.Reset()
		}

	case actionDoneMsg:
		m.err = msg.err

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	// The prompt blocks every other interaction until acknowledged.
	if m.prompt != "" {
		switch msg.String() {
		case "enter", "esc", " ":
			m.prompt = ""
		}
		return nil
	}

	if msg.String() == "tab" {
		m.switchFocus()
		return nil
	}

	if m.focus == focusInput {
		switch msg.String() {
		case "enter":
			return m.addTask(m.input.Value())
		case "esc":
			m.switchFocus()
			return nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		m.list.MoveUp()
	case "down", "j":
		m.list.MoveDown()
	case " ", "s", "enter":
		if row, ok := m.list.Selected(); ok && !row.ToggleDisabled {
			return m.toggle(row.ID)
		}
	case "d", "delete":
		if row, ok := m.list.Selected(); ok {
			return m.delete(row.ID)
		}
	case "pgup", "pgdown":
		return m.log.Update(msg)
	}
	return nil
}

func (m *Model) switchFocus() {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		m.list.Focused = true
	} else {
		m.focus = focusInput
		m.input.Focus()
		m.list.Focused = false
	}
}

func (m *Model) setNotifications(active []models.Notification) {
	m.toasts.Items = active
	for _, n := range active {
		if m.seen[n.ID] {
			continue
		}
		m.seen[n.ID] = true
		m.log.Append(n.CreatedAt, n.Message)
	}
}

func (m *Model) loadTasks() tea.Cmd {
	timers := m.timers
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		tasks, err := timers.Tasks(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m *Model) addTask(name string) tea.Cmd {
	timers := m.timers
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_, err := timers.AddTask(ctx, name)
		return taskAddedMsg{err: err}
	}
}

func (m *Model) toggle(id int64) tea.Cmd {
	timers := m.timers
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: timers.Toggle(ctx, id)}
	}
}

func (m *Model) delete(id int64) tea.Cmd {
	timers := m.timers
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: timers.DeleteTask(ctx, id)}
	}
}

func (m *Model) View() string {
	if m.prompt != "" {
		box := promptStyle.Render(m.prompt + "\n\n" + helpStyle.Render("(press enter)"))
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
		return box
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("⏱️  Task Timer"))
	s.WriteString("\n")

	input := inputStyle
	if m.focus == focusInput {
		input = focusedInputStyle
	}
	s.WriteString(input.Render(m.input.View()))
	s.WriteString("\n")

	s.WriteString(m.list.Render())
	s.WriteString("\n")

	if toasts := m.toasts.Render(); toasts != "" {
		s.WriteString(toasts)
		s.WriteString("\n")
	}

	if m.log.Len() > 0 {
		s.WriteString(m.log.View())
		s.WriteString("\n")
	}

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render(m.help()))
	return s.String()
}

func (m *Model) help() string {
	if m.focus == focusInput {
		return "enter add • tab list • ctrl+c quit"
	}
	return "j/k move • space/s start/pause • d delete • tab input • q quit"
}

// Run drives the terminal UI until the user quits or ctx is cancelled.
func Run(ctx context.Context, timers Timers, bridge *Bridge) error {
	p := tea.NewProgram(NewModel(timers, bridge),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
