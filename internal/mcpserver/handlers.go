package mcpserver

import (
	"bytes"
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// invoke runs one CLI invocation. A non-zero exit becomes a tool error
// carrying whatever the command printed.
func (h *Handler) invoke(ctx context.Context, args ...string) (*mcp.CallToolResult, error) {
	if err := ctx.Err(); err != nil {
		return mcp.NewToolResultError("request cancelled: " + err.Error()), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var stdout, stderr bytes.Buffer
	code := h.run(args, &stdout, &stderr)
	out := strings.TrimSpace(stdout.String())
	if code != 0 {
		msg := strings.TrimSpace(strings.Join([]string{out, strings.TrimSpace(stderr.String())}, "\n"))
		if msg == "" {
			msg = "command failed"
		}
		return mcp.NewToolResultError(msg), nil
	}
	return mcp.NewToolResultText(out), nil
}

// flagArgs appends --name=value for every non-empty value.
func flagArgs(args []string, pairs ...string) []string {
	for i := 0; i+1 < len(pairs); i += 2 {
		if v := strings.TrimSpace(pairs[i+1]); v != "" {
			args = append(args, "--"+pairs[i]+"="+v)
		}
	}
	return args
}

func (h *Handler) HandleAddTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := request.RequireString("task")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: task"), nil
	}
	args := flagArgs([]string{"add"},
		"task", task,
		"project", request.GetString("project", ""),
		"due", request.GetString("due", ""),
	)
	return h.invoke(ctx, args...)
}

func (h *Handler) HandleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := flagArgs([]string{"list"},
		"sort", request.GetString("sort", ""),
		"project", request.GetString("project", ""),
	)
	return h.invoke(ctx, args...)
}

func (h *Handler) HandleCompleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	desc, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: description"), nil
	}
	return h.invoke(ctx, "complete", "--", desc)
}

func (h *Handler) HandleDeleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	desc, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: description"), nil
	}
	return h.invoke(ctx, "delete", "--", desc)
}

func (h *Handler) HandleMoveTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	desc, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: description"), nil
	}
	project, err := request.RequireString("new_project")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: new_project"), nil
	}
	return h.invoke(ctx, "move-task", "--", desc, project)
}

func (h *Handler) HandleAddNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: target"), nil
	}
	note, err := request.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: note"), nil
	}
	args := []string{"add-note"}
	if request.GetBool("project", false) {
		args = append(args, "--project")
	}
	args = append(args, "--", target, note)
	return h.invoke(ctx, args...)
}

func (h *Handler) HandleClearCompleted(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.invoke(ctx, "clear-completed")
}

func (h *Handler) HandleAddProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: project"), nil
	}
	return h.invoke(ctx, "add-project", "--", project)
}

func (h *Handler) HandleDeleteProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: project"), nil
	}
	return h.invoke(ctx, "delete-project", "--", project)
}

func (h *Handler) HandleMoveProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: project"), nil
	}
	to, err := request.RequireString("new_project")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: new_project"), nil
	}
	return h.invoke(ctx, "move-project", "--", project, to)
}

func (h *Handler) HandleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.invoke(ctx, "projects")
}

func (h *Handler) HandleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := flagArgs([]string{"export"},
		"format", request.GetString("format", ""),
		"out", request.GetString("out", ""),
	)
	return h.invoke(ctx, args...)
}
