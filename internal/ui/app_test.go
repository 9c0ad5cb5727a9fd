package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nick-dorsch/tasktimer/internal/render"
	"github.com/nick-dorsch/tasktimer/internal/timer"
	"github.com/nick-dorsch/tasktimer/pkg/models"
)

type fakeTimers struct {
	added   []string
	toggled []int64
	deleted []int64
	tasks   []models.Task
}

func (f *fakeTimers) AddTask(_ context.Context, name string) (*models.Task, error) {
	if strings.TrimSpace(name) == "" {
		return nil, timer.ErrEmptyName
	}
	f.added = append(f.added, name)
	return &models.Task{ID: int64(len(f.added)), Name: name}, nil
}

func (f *fakeTimers) DeleteTask(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTimers) Toggle(_ context.Context, id int64) error {
	f.toggled = append(f.toggled, id)
	return nil
}

func (f *fakeTimers) Tasks(context.Context) ([]models.Task, error) {
	return f.tasks, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and feeds the message its command produces back in.
func press(t *testing.T, m *Model, k string) {
	t.Helper()
	_, cmd := m.Update(key(k))
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: 1, Name: "idle", Duration: 60, TimeLeft: 60},
		{ID: 2, Name: "running", Duration: 60, TimeLeft: 40, IsRunning: true},
		{ID: 3, Name: "finished", Duration: 60, TimeLeft: 0},
	}
}

func TestAddTask(t *testing.T) {
	timers := &fakeTimers{}
	m := NewModel(timers, NewBridge())

	for _, r := range "write" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if m.input.Value() != "write" {
		t.Fatalf("expected input 'write', got %q", m.input.Value())
	}

	press(t, m, "enter")
	if len(timers.added) != 1 || timers.added[0] != "write" {
		t.Fatalf("expected AddTask(write), got %v", timers.added)
	}
	if m.input.Value() != "" {
		t.Errorf("expected input cleared, got %q", m.input.Value())
	}
}

func TestEmptyNameShowsBlockingPrompt(t *testing.T) {
	timers := &fakeTimers{tasks: sampleTasks()}
	m := NewModel(timers, NewBridge())
	m.Update(tasksLoadedMsg{tasks: timers.tasks})

	press(t, m, "enter")
	if m.prompt != render.EmptyNamePrompt {
		t.Fatalf("expected prompt %q, got %q", render.EmptyNamePrompt, m.prompt)
	}
	if !strings.Contains(m.View(), render.EmptyNamePrompt) {
		t.Error("expected prompt in view")
	}

	// Other keys are swallowed while the prompt is up.
	press(t, m, "tab")
	press(t, m, "d")
	if m.focus != focusInput || len(timers.deleted) != 0 {
		t.Error("expected keys to be ignored while prompting")
	}

	press(t, m, "enter")
	if m.prompt != "" {
		t.Error("expected prompt dismissed")
	}
	if len(timers.added) != 0 {
		t.Errorf("expected no task added, got %v", timers.added)
	}
}

func TestListKeys(t *testing.T) {
	timers := &fakeTimers{tasks: sampleTasks()}
	m := NewModel(timers, NewBridge())
	m.Update(tasksLoadedMsg{tasks: timers.tasks})

	press(t, m, "tab")
	if m.focus != focusList {
		t.Fatal("expected list focus after tab")
	}

	press(t, m, " ")
	press(t, m, "j")
	press(t, m, "s")
	if len(timers.toggled) != 2 || timers.toggled[0] != 1 || timers.toggled[1] != 2 {
		t.Errorf("expected toggles [1 2], got %v", timers.toggled)
	}

	// Completed tasks cannot be toggled.
	press(t, m, "j")
	press(t, m, " ")
	if len(timers.toggled) != 2 {
		t.Errorf("expected completed task toggle to be ignored, got %v", timers.toggled)
	}

	press(t, m, "d")
	if len(timers.deleted) != 1 || timers.deleted[0] != 3 {
		t.Errorf("expected delete of task 3, got %v", timers.deleted)
	}

	press(t, m, "k")
	if row, _ := m.list.Selected(); row.ID != 2 {
		t.Errorf("expected task 2 selected, got %d", row.ID)
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Error("expected quit command on q")
	}
}

func TestViewShowsTasks(t *testing.T) {
	m := NewModel(&fakeTimers{}, NewBridge())
	if !strings.Contains(m.View(), render.EmptyMessage) {
		t.Error("expected empty message before tasks load")
	}

	m.Update(tasksLoadedMsg{tasks: sampleTasks()})
	view := m.View()
	for _, want := range []string{"idle", "00:40", render.PauseLabel, render.StartLabel} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestNotificationsAreLoggedOnce(t *testing.T) {
	m := NewModel(&fakeTimers{}, NewBridge())
	now := time.Now()

	first := models.Notification{ID: "a", Message: "Added task: one", CreatedAt: now}
	second := models.Notification{ID: "b", Message: "Task deleted", CreatedAt: now}

	m.Update(notificationsMsg{active: []models.Notification{first}})
	m.Update(notificationsMsg{active: []models.Notification{first, second}})
	m.Update(notificationsMsg{active: []models.Notification{second}})

	if m.log.Len() != 2 {
		t.Errorf("expected 2 log entries, got %d", m.log.Len())
	}
	if len(m.toasts.Items) != 1 || m.toasts.Items[0].ID != "b" {
		t.Errorf("expected only the active toast, got %+v", m.toasts.Items)
	}
	if !strings.Contains(m.View(), "Task deleted") {
		t.Error("expected toast in view")
	}
}

func TestBridgeCoalescesTaskSignals(t *testing.T) {
	b := NewBridge()
	for i := 0; i < 5; i++ {
		b.TasksChanged(context.Background())
	}
	if len(b.tasks) != 1 {
		t.Fatalf("expected one pending signal, got %d", len(b.tasks))
	}
	if _, ok := b.waitForTasks()().(tasksChangedMsg); !ok {
		t.Error("expected tasksChangedMsg")
	}
}

func TestBridgeKeepsNewestNotifications(t *testing.T) {
	b := NewBridge()
	b.NotificationsChanged([]models.Notification{{ID: "1"}})
	b.NotificationsChanged([]models.Notification{{ID: "1"}, {ID: "2"}})

	msg := b.waitForNotifications()().(notificationsMsg)
	if len(msg.active) != 2 {
		t.Errorf("expected newest snapshot, got %+v", msg.active)
	}
}
