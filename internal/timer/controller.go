// Package timer runs the per-task countdowns.
package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nick-dorsch/tasktimer/internal/telemetry"
	"github.com/nick-dorsch/tasktimer/pkg/models"
	"k8s.io/utils/clock"
)

var (
	// ErrEmptyName is returned when a task name is blank after trimming.
	ErrEmptyName = errors.New("task name is empty")
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed    = errors.New("timer controller is closed")
)

const tickTimeout = 5 * time.Second

type TaskStore interface {
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	ListTasks(ctx context.Context) ([]*models.Task, error)
	UpdateTaskTimer(ctx context.Context, id int64, timeLeft int, isRunning bool) error
	DeleteTask(ctx context.Context, id int64) (bool, error)
	ResetRunningTasks(ctx context.Context) error
	DisableOnChange()
	EnableOnChange()
}

// Alerter plays the completion sound. Play must not block.
type Alerter interface {
	Play()
}

type Notifier interface {
	Notify(message string) models.Notification
}

type registration struct {
	ticker clock.Ticker
	stop   chan struct{}
}

// Controller owns every running countdown. All operations and ticks are
// serialized by one lock, so a pause or delete always lands before any
// later tick of the same task.
type Controller struct {
	store    TaskStore
	clock    clock.WithTicker
	alert    Alerter
	notifier Notifier

	Logger  *slog.Logger
	Metrics *telemetry.Metrics

	mu     sync.Mutex
	timers map[int64]*registration
	closed bool
	wg     sync.WaitGroup
}

func NewController(store TaskStore, alert Alerter, notifier Notifier) *Controller {
	return &Controller{
		store:    store,
		clock:    clock.RealClock{},
		alert:    alert,
		notifier: notifier,
		Logger:   slog.Default(),
		timers:   make(map[int64]*registration),
	}
}

// AddTask trims name and appends a new idle task with the default duration.
func (c *Controller) AddTask(ctx context.Context, name string) (*models.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		c.Metrics.TaskRejected(ctx)
		return nil, ErrEmptyName
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	t := &models.Task{
		Name:     name,
		Duration: models.DefaultDurationSeconds,
		TimeLeft: models.DefaultDurationSeconds,
	}
	if err := c.store.CreateTask(ctx, t); err != nil {
		return nil, err
	}

	c.Metrics.TaskAdded(ctx)
	c.Logger.Debug("task added", slog.Int64("id", t.ID), slog.String("name", t.Name))
	c.notifier.Notify(fmt.Sprintf("Added task: %s", t.Name))
	return t, nil
}

// DeleteTask stops the task's countdown and removes it. Unknown ids are
// ignored.
func (c *Controller) DeleteTask(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, wasRunning := c.timers[id]
	c.cancelLocked(ctx, id)

	removed, err := c.store.DeleteTask(ctx, id)
	if err != nil {
		if wasRunning {
			c.markPausedLocked(ctx, id)
		}
		return err
	}
	if !removed {
		return nil
	}

	c.Metrics.TaskDeleted(ctx)
	c.Logger.Debug("task deleted", slog.Int64("id", id))
	c.notifier.Notify("Task deleted")
	return nil
}

// Toggle pauses a running task or starts an idle one. Completed and unknown
// tasks are left alone.
func (c *Controller) Toggle(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.timers[id]; ok {
		return c.pauseLocked(ctx, id)
	}
	return c.startLocked(ctx, id)
}

// Start begins or resumes a countdown. Starting a running task is a no-op.
func (c *Controller) Start(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.timers[id]; ok {
		return nil
	}
	return c.startLocked(ctx, id)
}

// Pause stops a countdown, keeping the time left. Pausing an idle task is a
// no-op.
func (c *Controller) Pause(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.timers[id]; !ok {
		return nil
	}
	return c.pauseLocked(ctx, id)
}

// Tasks returns a snapshot of every task in display order.
func (c *Controller) Tasks(ctx context.Context) ([]models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks, err := c.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return out, nil
}

// Task returns one task, or nil when it does not exist.
func (c *Controller) Task(ctx context.Context, id int64) (*models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.GetTask(ctx, id)
}

// Running reports whether id has a live countdown.
func (c *Controller) Running(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.timers[id]
	return ok
}

func (c *Controller) RunningCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Close stops every countdown and clears the running flags. Later starts
// fail with ErrClosed.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for id := range c.timers {
		c.cancelLocked(ctx, id)
	}

	c.store.DisableOnChange()
	err := c.store.ResetRunningTasks(ctx)
	c.store.EnableOnChange()
	c.mu.Unlock()

	c.wg.Wait()
	return err
}

func (c *Controller) startLocked(ctx context.Context, id int64) error {
	if c.closed {
		return ErrClosed
	}

	t, err := c.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if t == nil || t.IsCompleted() {
		return nil
	}

	if err := c.store.UpdateTaskTimer(ctx, id, t.TimeLeft, true); err != nil {
		return err
	}

	reg := &registration{
		ticker: c.clock.NewTicker(models.TickPeriod),
		stop:   make(chan struct{}),
	}
	c.timers[id] = reg
	c.wg.Add(1)
	go c.run(id, reg)

	c.Metrics.TimerStarted(ctx)
	c.Logger.Debug("timer started", slog.Int64("id", id), slog.Int("time_left", t.TimeLeft))
	return nil
}

func (c *Controller) pauseLocked(ctx context.Context, id int64) error {
	c.cancelLocked(ctx, id)

	t, err := c.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}
	if err := c.store.UpdateTaskTimer(ctx, id, t.TimeLeft, false); err != nil {
		return err
	}

	c.Logger.Debug("timer paused", slog.Int64("id", id), slog.Int("time_left", t.TimeLeft))
	return nil
}

// cancelLocked drops the registration. The tick goroutine exits on its own;
// a tick it already received finds the registration gone and does nothing.
func (c *Controller) cancelLocked(ctx context.Context, id int64) {
	reg, ok := c.timers[id]
	if !ok {
		return
	}
	delete(c.timers, id)
	close(reg.stop)
	c.Metrics.TimerStopped(ctx)
}

// markPausedLocked clears is_running after the countdown was stopped but the
// task could not be removed.
func (c *Controller) markPausedLocked(ctx context.Context, id int64) {
	t, err := c.store.GetTask(ctx, id)
	if err != nil || t == nil {
		c.Logger.Error("failed to load task after delete error", slog.Int64("id", id), slog.Any("err", err))
		return
	}
	if err := c.store.UpdateTaskTimer(ctx, id, t.TimeLeft, false); err != nil {
		c.Logger.Error("failed to pause task after delete error", slog.Int64("id", id), slog.Any("err", err))
	}
}

func (c *Controller) run(id int64, reg *registration) {
	defer c.wg.Done()
	defer reg.ticker.Stop()

	for {
		select {
		case <-reg.stop:
			return
		case <-reg.ticker.C():
			c.tick(id, reg)
		}
	}
}

func (c *Controller) tick(id int64, reg *registration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timers[id] != reg {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	t, err := c.store.GetTask(ctx, id)
	if err != nil {
		c.Logger.Error("tick failed to load task", slog.Int64("id", id), slog.Any("err", err))
		return
	}
	if t == nil {
		c.cancelLocked(ctx, id)
		return
	}

	timeLeft := t.TimeLeft - 1
	c.Metrics.Tick(ctx)
	if timeLeft > 0 {
		if err := c.store.UpdateTaskTimer(ctx, id, timeLeft, true); err != nil {
			c.Logger.Error("tick failed to store time", slog.Int64("id", id), slog.Any("err", err))
		}
		return
	}

	if err := c.store.UpdateTaskTimer(ctx, id, 0, false); err != nil {
		c.Logger.Error("tick failed to store completion", slog.Int64("id", id), slog.Any("err", err))
		return
	}
	c.cancelLocked(ctx, id)

	c.Metrics.Completed(ctx)
	c.Logger.Info("task completed", slog.Int64("id", id), slog.String("name", t.Name))
	c.alert.Play()
	c.notifier.Notify(fmt.Sprintf(`🎉 Done! "%s"`, t.Name))
}
