package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quorum-ai/quorum/internal/provider"
)

// registerProviderTools adds the single-provider ask tools.
func (s *Server) registerProviderTools() {
	s.mcp.AddTool(mcp.NewTool("ask_gemini",
		mcp.WithDescription("Ask Gemini AI a question using the local Gemini CLI."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The prompt to send to Gemini AI.")),
		mcp.WithString("model", mcp.Description("Optional Gemini model (e.g. gemini-2.0-flash).")),
	), s.handleAskGemini)

	s.mcp.AddTool(mcp.NewTool("ask_codex",
		mcp.WithDescription("Ask Codex AI a question using the local Codex CLI."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The prompt to send to Codex AI.")),
	), s.handleAskCodex)

	s.mcp.AddTool(mcp.NewTool("ask_copilot",
		mcp.WithDescription("Ask GitHub Copilot a question using the local Copilot CLI."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The prompt to send to Copilot.")),
	), s.handleAskCopilot)
}

func (s *Server) handleAskGemini(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return nil, err
	}
	model := req.GetString("model", "")

	resp := s.deps.Invoker.Invoke(ctx, provider.GeminiInvocation(s.deps.Config.Providers.Gemini, prompt, model, 0))
	if !resp.Success {
		return errorResult("Gemini error: %s", resp.Error), nil
	}
	return textResult(resp.Response), nil
}

func (s *Server) handleAskCodex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return nil, err
	}

	resp := s.deps.Invoker.Invoke(ctx, provider.CodexInvocation(s.deps.Config.Providers.Codex, prompt, 0))
	if !resp.Success {
		return errorResult("Codex error: %s", resp.Error), nil
	}
	return textResult(resp.Response), nil
}

func (s *Server) handleAskCopilot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return nil, err
	}

	resp := s.deps.Invoker.Invoke(ctx, provider.CopilotInvocation(s.deps.Config.Providers.Copilot, prompt, 0))
	if !resp.Success {
		return errorResult("Copilot error: %s", resp.Error), nil
	}
	return textResult(resp.Response), nil
}
