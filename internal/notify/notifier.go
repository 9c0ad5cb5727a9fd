// Package notify keeps the stack of transient messages shown to the user.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nick-dorsch/tasktimer/pkg/models"
	"k8s.io/utils/clock"
)

// DisplayDuration is how long a notification stays visible.
const DisplayDuration = 3 * time.Second

// Notifier holds the currently visible notifications. Each one is removed
// DisplayDuration after it was posted, whatever else happens in between.
type Notifier struct {
	clock clock.WithDelayedExecution

	mu       sync.Mutex
	active   []models.Notification
	timers   map[string]clock.Timer
	onChange func(active []models.Notification)
}

func NewNotifier() *Notifier {
	return newNotifier(clock.RealClock{})
}

func newNotifier(c clock.WithDelayedExecution) *Notifier {
	return &Notifier{
		clock:  c,
		active: make([]models.Notification, 0),
		timers: make(map[string]clock.Timer),
	}
}

// SetOnChange registers fn to receive the visible stack after every change.
// fn is called without the notifier's lock held but must not block.
func (n *Notifier) SetOnChange(fn func(active []models.Notification)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

// Notify posts message and schedules its removal.
func (n *Notifier) Notify(message string) models.Notification {
	now := n.clock.Now()
	note := models.Notification{
		ID:        uuid.NewString(),
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(DisplayDuration),
	}

	n.mu.Lock()
	n.active = append(n.active, note)
	n.timers[note.ID] = n.clock.AfterFunc(DisplayDuration, func() {
		n.expire(note.ID)
	})
	snapshot, fn := n.snapshotLocked()
	n.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
	return note
}

// Dismiss removes a notification early. Unknown ids are ignored.
func (n *Notifier) Dismiss(id string) bool {
	return n.remove(id, true)
}

// expire runs from the dismissal timer itself, which has already fired and
// must not be stopped from inside its own callback.
func (n *Notifier) expire(id string) {
	n.remove(id, false)
}

func (n *Notifier) remove(id string, stop bool) bool {
	n.mu.Lock()
	idx := -1
	for i, note := range n.active {
		if note.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		n.mu.Unlock()
		return false
	}

	n.active = append(n.active[:idx], n.active[idx+1:]...)
	if t, ok := n.timers[id]; ok {
		if stop {
			t.Stop()
		}
		delete(n.timers, id)
	}
	snapshot, fn := n.snapshotLocked()
	n.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
	return true
}

// Active returns the visible notifications, oldest first.
func (n *Notifier) Active() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	snapshot, _ := n.snapshotLocked()
	return snapshot
}

// Close cancels every pending dismissal.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
}

func (n *Notifier) snapshotLocked() ([]models.Notification, func([]models.Notification)) {
	snapshot := make([]models.Notification, len(n.active))
	copy(snapshot, n.active)
	return snapshot, n.onChange
}
