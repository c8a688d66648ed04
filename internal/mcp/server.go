// Package mcp exposes the tracker to MCP clients: read tools over weeks,
// workouts, templates and weights, a weight logging tool, and the full
// state as a resource.
package mcp

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog workout tracker. Query training weeks, workouts, templates, bodyweight and estimated one-rep-max progress. Dates are YYYY-MM-DD."),
	)

	h := &handlers{ds: ds, log: log, now: time.Now}

	s.AddTools(
		server.ServerTool{Tool: toolListWeeks, Handler: h.listWeeks},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
		server.ServerTool{Tool: toolGetWeights, Handler: h.getWeights},
		server.ServerTool{Tool: toolLogWeight, Handler: h.logWeight},
		server.ServerTool{Tool: toolGetOneRepMaxHistory, Handler: h.getOneRepMaxHistory},
		server.ServerTool{Tool: toolGetCalendarMonth, Handler: h.getCalendarMonth},
	)

	s.AddResources(
		server.ServerResource{Resource: resState, Handler: h.state},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
	now func() time.Time
}
