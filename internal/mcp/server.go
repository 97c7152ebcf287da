package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/logging"
	"github.com/ziadkadry99/labelkit/internal/sites"
	"github.com/ziadkadry99/labelkit/internal/templates"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes label templates and sites.
type Server struct {
	templates *templates.Store
	sites     *sites.Store
	log       *zap.Logger
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server reading from the given stores.
func NewServer(tpl *templates.Store, st *sites.Store, log *zap.Logger) *Server {
	s := &Server{
		templates: tpl,
		sites:     st,
		log:       logging.OrNop(log),
	}

	s.mcp = server.NewMCPServer(
		"labelkit",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listTemplatesTool, s.handleListTemplates)
	s.mcp.AddTool(listSitesTool, s.handleListSites)
	s.mcp.AddTool(matchURLTool, s.handleMatchURL)
	s.mcp.AddTool(fillPreviewTool, s.handleFillPreview)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
