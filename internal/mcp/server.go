// Package mcp exposes the rule engine as Model Context Protocol tools.
package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/radassist-mcp-server/internal/domain"
)

// Server wraps the MCP SDK server with the radassist tools registered.
type Server struct {
	MCPServer *sdkmcp.Server

	evaluator domain.Evaluator
	copier    domain.ReportCopier
	logger    *logrus.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithReportCopier copies every composed lesion report through c.
func WithReportCopier(c domain.ReportCopier) Option {
	return func(s *Server) {
		s.copier = c
	}
}

// NewServer creates an MCP server backed by evaluator.
func NewServer(cfg domain.MCPConfig, evaluator domain.Evaluator, logger *logrus.Logger, opts ...Option) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{
			Name:    cfg.ServerName,
			Version: cfg.ServerVersion,
		}, nil),
		evaluator: evaluator,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	logger.WithField("tool_count", len(toolNames)).Info("Registered MCP tools")
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting MCP server on stdio")
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
