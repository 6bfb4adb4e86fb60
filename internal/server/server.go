// Package server exposes the guardfs filesystem operations as MCP tools
// using the mcp-go library.
//
// The server communicates via stdin/stdout using JSON-RPC 2.0 as specified
// by the MCP standard. Every tool invocation passes through the admission
// gate before its handler runs, and every handler maps typed operation
// errors to tool error results rather than protocol failures.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"guardfs/internal/config"
	"guardfs/internal/fsops"
	"guardfs/internal/logging"
	"guardfs/internal/ratelimit"
)

// Server wires the reader, writer and admission gate into an MCP server.
type Server struct {
	config *config.Config
	logger *logging.AppLogger

	reader *fsops.Reader
	writer *fsops.Writer
	gate   *ratelimit.Gate

	mcpServer *server.MCPServer
}

// New creates a Server from the given configuration.
func New(cfg *config.Config, logger *logging.AppLogger) (*Server, error) {
	gate, err := cfg.Server.Gate()
	if err != nil {
		return nil, fmt.Errorf("failed to build admission gate: %w", err)
	}

	s := &Server{
		config: cfg,
		logger: logger,
		reader: fsops.NewReader(cfg.AccessPolicy),
		writer: fsops.NewWriter(cfg.AccessPolicy, cfg.Server.CreateDirs),
		gate:   gate,
	}

	s.mcpServer = server.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		server.WithToolCapabilities(false),
		server.WithToolHandlerMiddleware(s.admission),
	)
	s.registerTools()

	return s, nil
}

// Serve runs the server over stdio until the client disconnects.
func (s *Server) Serve() error {
	s.logger.Info("Starting MCP server",
		"name", s.config.Server.Name,
		"version", s.config.Server.Version,
		"rate_limit", s.gate.Limit(),
		"read_only", s.config.AccessPolicy.ReadOnly,
	)

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// admission is the tool middleware consulting the rate-limit gate before
// any handler runs.
func (s *Server) admission(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.gate.Check() {
			s.logger.Warn("Rate limit exceeded", "tool", req.Params.Name)
			return mcp.NewToolResultError("rate limit exceeded, please slow down requests"), nil
		}

		start := time.Now()
		result, err := next(ctx, req)
		s.logger.LogToolCall(req.Params.Name, start, err)
		return result, err
	}
}
