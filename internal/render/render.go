// Package render projects the task list into display rows shared by the
// terminal and web front ends.
package render

import (
	"fmt"

	"github.com/nick-dorsch/tasktimer/pkg/models"
)

const (
	EmptyMessage = "No tasks yet 😴"
	StartLabel   = "▶️ Start"
	PauseLabel   = "⏸️ Pause"
	DeleteLabel  = "Delete"

	// EmptyNamePrompt is shown when a blank task name is submitted.
	EmptyNamePrompt = "Please enter a task"

	WarningThreshold = 60
	DangerThreshold  = 30
)

// Severity is the urgency class of a countdown.
type Severity string

const (
	SeverityNone    Severity = ""
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Row is one task as it is displayed.
type Row struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Clock          string   `json:"clock"`
	TimeLeft       int      `json:"time_left"`
	Severity       Severity `json:"severity,omitempty"`
	Completed      bool     `json:"completed"`
	Running        bool     `json:"running"`
	ToggleLabel    string   `json:"toggle_label"`
	ToggleDisabled bool     `json:"toggle_disabled"`
}

// View is the whole list as it is displayed.
type View struct {
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"empty_message,omitempty"`
	DeleteLabel  string `json:"delete_label"`
	Rows         []Row  `json:"rows"`
}

// FormatTime renders seconds as MM:SS. Minutes are not capped at two digits.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Classify returns the urgency of a countdown. Danger takes precedence.
func Classify(timeLeft int) Severity {
	switch {
	case timeLeft > 0 && timeLeft < DangerThreshold:
		return SeverityDanger
	case timeLeft > 0 && timeLeft < WarningThreshold:
		return SeverityWarning
	default:
		return SeverityNone
	}
}

// NewRow projects a single task.
func NewRow(t models.Task) Row {
	completed := t.IsCompleted()
	label := StartLabel
	if t.IsRunning {
		label = PauseLabel
	}
	return Row{
		ID:             t.ID,
		Name:           t.Name,
		Clock:          FormatTime(t.TimeLeft),
		TimeLeft:       t.TimeLeft,
		Severity:       Classify(t.TimeLeft),
		Completed:      completed,
		Running:        t.IsRunning,
		ToggleLabel:    label,
		ToggleDisabled: completed,
	}
}

// Project builds the view for tasks in the order given.
func Project(tasks []models.Task) View {
	v := View{DeleteLabel: DeleteLabel, Rows: make([]Row, 0, len(tasks))}
	if len(tasks) == 0 {
		v.Empty = true
		v.EmptyMessage = EmptyMessage
		return v
	}
	for _, t := range tasks {
		v.Rows = append(v.Rows, NewRow(t))
	}
	return v
}
