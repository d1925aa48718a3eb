package cli

import (
	"io"

	"github.com/mark3labs/mcp-go/server"

	"github.com/amirbrooks/todolist/internal/mcpserver"
)

// cmdMCP serves the commands as MCP tools on stdin/stdout until the client
// disconnects. Each tool call re-enters run with the same global flags.
func (a *app) cmdMCP(args []string) int {
	if len(args) > 0 {
		return a.usage("mcp")
	}
	global := a.gf.globalArgs()
	srv, err := mcpserver.NewServer(func(argv []string, stdout, stderr io.Writer) int {
		full := make([]string, 0, len(global)+len(argv))
		full = append(append(full, global...), argv...)
		return run(full, stdout, stderr)
	})
	if err != nil {
		return a.fail("mcp", err)
	}

	a.logger.Info("serving MCP over stdio", "file", a.store.Path)
	errLogger := a.logger.StandardLog()
	if err := server.ServeStdio(srv, server.WithErrorLogger(errLogger)); err != nil {
		return a.fail("mcp", err)
	}
	return ExitOK
}
