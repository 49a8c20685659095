// Package server exposes the orchestration system as an MCP server
// over stdio. Every capability is a tool; tool failures are returned
// as error results in the payload, never as transport errors, so the
// calling model can read and react to them.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/quorum-ai/quorum/internal/agent"
	"github.com/quorum-ai/quorum/internal/cache"
	"github.com/quorum-ai/quorum/internal/config"
	"github.com/quorum-ai/quorum/internal/consensus"
	"github.com/quorum-ai/quorum/internal/orchestrator"
	"github.com/quorum-ai/quorum/internal/provider"
	"github.com/quorum-ai/quorum/internal/store"
	"github.com/quorum-ai/quorum/internal/version"
)

// Deps carries everything the tool handlers need.
type Deps struct {
	Config     *config.Config
	Invoker    *provider.Invoker
	Engine     *consensus.Engine
	Supervisor *orchestrator.Supervisor
	Registry   *agent.Registry
	Tasks      *store.TaskStore
	Inbox      *store.Inbox
	Cache      *cache.Store
	Logger     *logrus.Logger
}

// Server is the MCP tool surface over the orchestration components.
type Server struct {
	deps Deps
	log  *logrus.Logger
	mcp  *mcpserver.MCPServer
}

// New builds the server and registers all tools.
func New(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		deps: deps,
		log:  log,
		mcp:  mcpserver.NewMCPServer("quorum", version.Get()),
	}
	s.registerProviderTools()
	s.registerConsensusTools()
	s.registerOrchestrationTools()
	return s
}

// Serve runs the MCP server over stdio until the transport closes.
func (s *Server) Serve() error {
	s.log.Info("quorum MCP server listening on stdio")
	return mcpserver.ServeStdio(s.mcp)
}

// textResult wraps plain text in a successful tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

// errorResult wraps an error message in a failed tool result. The
// call itself still succeeds at the transport level.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
