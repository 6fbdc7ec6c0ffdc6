package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/auto-qa/internal/artifact"
	"github.com/ziadkadry99/auto-qa/internal/assistant"
	"github.com/ziadkadry99/auto-qa/internal/generation"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Generator is the part of the generation service the tools call.
type Generator interface {
	FromPrompt(ctx context.Context, kind artifact.Kind, req generation.PromptRequest) (*artifact.Result, error)
	FromConfluence(ctx context.Context, kind artifact.Kind, req generation.ConfluenceRequest) (*artifact.Result, error)
	FromJira(ctx context.Context, kind artifact.Kind, req generation.JiraRequest) (*artifact.Result, error)
}

// Asker answers assistant questions.
type Asker interface {
	Ask(ctx context.Context, req assistant.AskRequest) (*assistant.Answer, error)
}

// Server wraps an MCP server that exposes test artifact generation and the
// QA assistant as tools.
type Server struct {
	gen   Generator
	asker Asker
	mcp   *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(gen Generator, asker Asker) *Server {
	s := &Server{
		gen:   gen,
		asker: asker,
	}

	s.mcp = server.NewMCPServer(
		"autoqa",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(generateTestCasesTool, s.handleGenerateTestCases)
	s.mcp.AddTool(generateTestPlanTool, s.handleGenerateTestPlan)
	s.mcp.AddTool(askAssistantTool, s.handleAskAssistant)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
