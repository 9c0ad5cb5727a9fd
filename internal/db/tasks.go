package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nick-dorsch/tasktimer/pkg/models"
)

const taskColumns = `id, name, duration, time_left, is_running, created_at, updated_at`

// CreateTask appends a task and fills in its ID and timestamps.
func (db *DB) CreateTask(ctx context.Context, t *models.Task) error {
	query := `
		INSERT INTO tasks (name, duration, time_left, is_running)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at, updated_at
	`
	err := db.QueryRowContext(ctx, query, t.Name, t.Duration, t.TimeLeft, boolToInt(t.IsRunning)).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

// GetTask retrieves a task by its ID. It returns nil when no task matches.
func (db *DB) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	t, err := scanTask(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// ListTasks returns every task in creation order.
func (db *DB) ListTasks(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY id ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return tasks, nil
}

// CountTasks returns the number of tasks in the store.
func (db *DB) CountTasks(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// UpdateTaskTimer stores the countdown state of a task.
func (db *DB) UpdateTaskTimer(ctx context.Context, id int64, timeLeft int, isRunning bool) error {
	query := `
		UPDATE tasks
		SET time_left = ?, is_running = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	res, err := db.ExecContext(ctx, query, timeLeft, boolToInt(isRunning), id)
	if err != nil {
		return fmt.Errorf("failed to update task timer: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task not found: %d", id)
	}

	db.triggerChange(ctx)
	return nil
}

// DeleteTask removes a task and reports whether it existed.
func (db *DB) DeleteTask(ctx context.Context, id int64) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	db.triggerChange(ctx)
	return true, nil
}

// ResetRunningTasks marks every task as paused. Used when the timers that
// backed the running flag are torn down.
func (db *DB) ResetRunningTasks(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `UPDATE tasks SET is_running = 0 WHERE is_running = 1`)
	if err != nil {
		return fmt.Errorf("failed to reset running tasks: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var isRunning int
	err := row.Scan(&t.ID, &t.Name, &t.Duration, &t.TimeLeft, &isRunning, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.IsRunning = isRunning == 1
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
