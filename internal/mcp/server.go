package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nick-dorsch/tasktimer/internal/render"
	"github.com/nick-dorsch/tasktimer/internal/timer"
	"github.com/nick-dorsch/tasktimer/pkg/models"
)

// TaskTimers is the slice of the timer controller exposed as tools.
type TaskTimers interface {
	AddTask(ctx context.Context, name string) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64) error
	Start(ctx context.Context, id int64) error
	Pause(ctx context.Context, id int64) error
	Task(ctx context.Context, id int64) (*models.Task, error)
	Tasks(ctx context.Context) ([]models.Task, error)
}

type Notifications interface {
	Active() []models.Notification
}

// NewServer creates a new MCP server.
func NewServer(timers TaskTimers, notes Notifications) *server.MCPServer {
	s := server.NewMCPServer("Task Timer", "0.1.0")

	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task with a one minute countdown. The task starts paused."),
		mcp.WithString("name", mcp.Description("Task name (surrounding whitespace is trimmed)"), mcp.Required()),
	), addTaskHandler(timers))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task, stopping its countdown."),
		mcp.WithNumber("id", mcp.Description("Task ID"), mcp.Required()),
	), deleteTaskHandler(timers))

	s.AddTool(mcp.NewTool("toggle_timer",
		mcp.WithDescription("Start a paused countdown or pause a running one. Completed tasks are ignored."),
		mcp.WithNumber("id", mcp.Description("Task ID"), mcp.Required()),
	), timerHandler(timers, timers.Toggle))

	s.AddTool(mcp.NewTool("start_timer",
		mcp.WithDescription("Start or resume a countdown."),
		mcp.WithNumber("id", mcp.Description("Task ID"), mcp.Required()),
	), timerHandler(timers, timers.Start))

	s.AddTool(mcp.NewTool("pause_timer",
		mcp.WithDescription("Pause a countdown, keeping the time left."),
		mcp.WithNumber("id", mcp.Description("Task ID"), mcp.Required()),
	), timerHandler(timers, timers.Pause))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List every task with its formatted countdown."),
	), listTasksHandler(timers))

	s.AddTool(mcp.NewTool("list_notifications",
		mcp.WithDescription("List the notifications currently on screen."),
	), listNotificationsHandler(notes))

	return s
}

func addTaskHandler(timers TaskTimers) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := mcp.ParseString(request, "name", "")

		t, err := timers.AddTask(ctx, name)
		if errors.Is(err, timer.ErrEmptyName) {
			return mcp.NewToolResultError(render.EmptyNamePrompt), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return jsonResult(render.NewRow(*t))
	}
}

func deleteTaskHandler(timers TaskTimers) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseInt64(request, "id", 0)

		if err := timers.DeleteTask(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Task %d deleted", id)), nil
	}
}

// timerHandler runs op on the task and reports its resulting state.
func timerHandler(timers TaskTimers, op func(context.Context, int64) error) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseInt64(request, "id", 0)

		if err := op(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		t, err := timers.Task(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if t == nil {
			return mcp.NewToolResultText(fmt.Sprintf("Task %d does not exist", id)), nil
		}

		return jsonResult(render.NewRow(*t))
	}
}

func listTasksHandler(timers TaskTimers) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := timers.Tasks(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return jsonResult(render.Project(tasks))
	}
}

func listNotificationsHandler(notes Notifications) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]any{"notifications": notes.Active()})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Serve speaks MCP over stdin/stdout until ctx is cancelled or stdin closes.
func Serve(ctx context.Context, s *server.MCPServer) error {
	return server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
}
