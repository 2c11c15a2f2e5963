// Package mcpserver exposes the bot over the Model Context Protocol so
// automation clients can issue commands and query the ledger as tools.
package mcpserver

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/keshon/server-banker/internal/dispatch"
	"github.com/keshon/server-banker/internal/ledger"
)

const (
	serverName    = "server-banker"
	serverVersion = "1.0.0"
)

// Server hosts the MCP server over the streamable HTTP transport.
type Server struct {
	mcpServer  *mcp.Server
	dispatcher *dispatch.Dispatcher
	ledger     *ledger.Ledger
	serverID   string
}

// New creates the MCP server and registers its tools. serverID is the
// namespace this transport's invocations are scoped to, mirroring the
// HTTP transport.
func New(d *dispatch.Dispatcher, led *ledger.Ledger, serverID string) *Server {
	s := &Server{
		mcpServer:  mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil),
		dispatcher: d,
		ledger:     led,
		serverID:   serverID,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, sendCommandTool(), s.sendCommandHandler())
	mcp.AddTool(s.mcpServer, getBalanceTool(), s.getBalanceHandler())
	mcp.AddTool(s.mcpServer, listInventoryTool(), s.listInventoryHandler())
}

// HTTPHandler returns the streamable HTTP transport handler, mounted by
// the HTTP server at /mcp.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}
