// Package mcp exposes scans and scan history to MCP clients over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/netsentry/internal/history"
	"github.com/ziadkadry99/netsentry/internal/scan"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Scanner runs one scan.
type Scanner interface {
	Scan(ctx context.Context) (*scan.Result, error)
}

// Server wraps an MCP server that exposes the detector and its history.
type Server struct {
	scanner Scanner
	history *history.Store
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server. history may be nil, in which case
// scans are not recorded and scan_history is not offered.
func NewServer(scanner Scanner, store *history.Store) *Server {
	s := &Server{
		scanner: scanner,
		history: store,
	}

	s.mcp = server.NewMCPServer(
		"netsentry",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(runScanTool, s.handleRunScan)
	if s.history != nil {
		s.mcp.AddTool(scanHistoryTool, s.handleScanHistory)
	}
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
