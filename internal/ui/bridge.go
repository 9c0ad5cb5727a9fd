package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nick-dorsch/tasktimer/pkg/models"
)

// Bridge carries change signals from the store and notifier into the
// program. Senders never block: task changes collapse into one pending
// signal and only the newest notification snapshot is kept.
type Bridge struct {
	tasks chan struct{}
	notes chan []models.Notification
}

func NewBridge() *Bridge {
	return &Bridge{
		tasks: make(chan struct{}, 1),
		notes: make(chan []models.Notification, 1),
	}
}

// TasksChanged matches the store's change hook signature.
func (b *Bridge) TasksChanged(context.Context) {
	select {
	case b.tasks <- struct{}{}:
	default:
	}
}

// NotificationsChanged matches the notifier's change hook signature.
func (b *Bridge) NotificationsChanged(active []models.Notification) {
	for {
		select {
		case b.notes <- active:
			return
		default:
		}
		select {
		case <-b.notes:
		default:
		}
	}
}

type tasksChangedMsg struct{}

type notificationsMsg struct {
	active []models.Notification
}

func (b *Bridge) waitForTasks() tea.Cmd {
	return func() tea.Msg {
		<-b.tasks
		return tasksChangedMsg{}
	}
}

func (b *Bridge) waitForNotifications() tea.Cmd {
	return func() tea.Msg {
		return notificationsMsg{active: <-b.notes}
	}
}
