// Package mcpserver exposes the todo commands as Model Context Protocol tools
// served over stdio.
package mcpserver

import (
	"errors"
	"io"
	"sync"

	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "todolist"
	serverVersion = "1.0.0"
)

// Runner executes one CLI invocation and returns its exit code. Tool
// handlers capture what it writes.
type Runner func(args []string, stdout, stderr io.Writer) int

// Handler turns tool calls into CLI invocations. Calls are serialized so
// each one is a complete read-modify-write of the todo file.
type Handler struct {
	mu  sync.Mutex
	run Runner
}

func NewHandler(run Runner) (*Handler, error) {
	if run == nil {
		return nil, errors.New("mcpserver: runner is nil")
	}
	return &Handler{run: run}, nil
}

// NewServer creates an MCP server with every todo tool registered.
func NewServer(run Runner) (*server.MCPServer, error) {
	h, err := NewHandler(run)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	// Tasks
	s.AddTool(addTaskTool(), h.HandleAddTask)
	s.AddTool(listTasksTool(), h.HandleListTasks)
	s.AddTool(completeTaskTool(), h.HandleCompleteTask)
	s.AddTool(deleteTaskTool(), h.HandleDeleteTask)
	s.AddTool(moveTaskTool(), h.HandleMoveTask)
	s.AddTool(addNoteTool(), h.HandleAddNote)
	s.AddTool(clearCompletedTool(), h.HandleClearCompleted)

	// Projects
	s.AddTool(addProjectTool(), h.HandleAddProject)
	s.AddTool(deleteProjectTool(), h.HandleDeleteProject)
	s.AddTool(moveProjectTool(), h.HandleMoveProject)
	s.AddTool(listProjectsTool(), h.HandleListProjects)

	s.AddTool(exportTool(), h.HandleExport)

	return s, nil
}
