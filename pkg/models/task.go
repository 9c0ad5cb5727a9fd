package models

import "time"

const (
	// DefaultDurationSeconds is the countdown every new task starts with.
	DefaultDurationSeconds = 1 * 60

	// TickPeriod is how often a running task loses one second.
	TickPeriod = time.Second
)

type Task struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Duration  int       `json:"duration"`
	TimeLeft  int       `json:"time_left"`
	IsRunning bool      `json:"is_running"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCompleted reports whether the countdown has reached zero. Completed tasks
// cannot be restarted.
func (t *Task) IsCompleted() bool {
	return t.TimeLeft <= 0
}
