package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/nick-dorsch/tasktimer/embed/web_assets"
	"github.com/nick-dorsch/tasktimer/internal/render"
	"github.com/nick-dorsch/tasktimer/internal/timer"
	"github.com/nick-dorsch/tasktimer/pkg/models"
)

// TaskTimers is the slice of the timer controller the web front end drives.
type TaskTimers interface {
	AddTask(ctx context.Context, name string) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64) error
	Tasks(ctx context.Context) ([]models.Task, error)
}

type Notifications interface {
	Active() []models.Notification
}

type Server struct {
	timers  TaskTimers
	notes   Notifications
	hub     *Hub
	tone    []byte
	logger  *slog.Logger
	server  *http.Server
	changed chan struct{}
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

func NewServer(timers TaskTimers, notes Notifications, hub *Hub, tone []byte, logger *slog.Logger) *Server {
	return &Server{
		timers:  timers,
		notes:   notes,
		hub:     hub,
		tone:    tone,
		logger:  logger,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// TasksChanged schedules a push of the rendered list. It never blocks and
// may be called while the timer controller holds its lock.
func (s *Server) TasksChanged(context.Context) {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// NotificationsChanged pushes the active notifications to every browser.
func (s *Server) NotificationsChanged(active []models.Notification) {
	s.hub.Broadcast(Event{Type: EventNotifications, Payload: active})
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleAddTask)
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.handleToggle)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("GET /api/render", s.handleRender)
	mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	mux.HandleFunc("GET /alert.wav", s.handleAlert)
	mux.HandleFunc("GET /ws", s.hub.ServeWS)

	// Static files
	mux.Handle("GET /", http.FileServer(http.FS(web_assets.Assets)))

	return mux
}

// Start serves on addr and pushes list updates until Shutdown.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return nil
	default:
	}
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	srv := s.server
	s.mu.Unlock()

	go s.pushLoop()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.once.Do(func() { close(s.done) })
	srv := s.server
	s.mu.Unlock()

	s.hub.Close()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) pushLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.changed:
			s.pushTasks(context.Background())
		}
	}
}

func (s *Server) pushTasks(ctx context.Context) {
	tasks, err := s.timers.Tasks(ctx)
	if err != nil {
		s.logger.Error("failed to load tasks for push", slog.Any("err", err))
		return
	}
	html, err := render.HTML(tasks)
	if err != nil {
		s.logger.Error("failed to render tasks for push", slog.Any("err", err))
		return
	}
	s.hub.Broadcast(Event{Type: EventTasks, Payload: html})
}

type addTaskRequest struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.timers.Tasks(r.Context())
	if err != nil {
		s.respond(w, nil, err)
		return
	}
	s.respond(w, render.Project(tasks), nil)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondStatus(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	task, err := s.timers.AddTask(r.Context(), req.Name)
	if errors.Is(err, timer.ErrEmptyName) {
		s.respondStatus(w, http.StatusBadRequest, errorResponse{Error: render.EmptyNamePrompt})
		return
	}
	if err != nil {
		s.respond(w, nil, err)
		return
	}
	s.respondStatus(w, http.StatusCreated, render.NewRow(*task))
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.timers.Toggle(r.Context(), id); err != nil {
		s.respond(w, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.timers.DeleteTask(r.Context(), id); err != nil {
		s.respond(w, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.timers.Tasks(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	html, err := render.HTML(tasks)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.notes.Active(), nil)
}

func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(s.tone)))
	w.Write(s.tone)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.respondStatus(w, http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		return 0, false
	}
	return id, true
}

func (s *Server) respond(w http.ResponseWriter, data any, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.respondStatus(w, http.StatusOK, data)
}

func (s *Server) respondStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
