// Package mcpserver exposes the chat pipeline as an MCP tool over stdio, so
// desktop assistants can use the same gates and upstream client as the web
// endpoint.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with dependencies and lifecycle management.
type Server struct {
	mcp    *mcp.Server
	logger *slog.Logger
}

// New creates an MCP server with the chat tool registered.
func New(version string, chat ChatService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	impl := &mcp.Implementation{
		Name:    "soksol",
		Version: version,
	}

	mcpServer := mcp.NewServer(impl, nil)
	mcpServer.AddReceivingMiddleware(LoggingMiddleware(logger))
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        ChatToolName,
		Description: "Send a conversation to the counselling assistant and get its reply. Nothing is stored.",
	}, NewChatHandler(chat))

	return &Server{
		mcp:    mcpServer,
		logger: logger,
	}
}

// Run serves on stdio and blocks until disconnect or context cancellation.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server, for in-memory transports in tests.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}
