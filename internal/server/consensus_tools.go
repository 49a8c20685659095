package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quorum-ai/quorum/internal/consensus"
)

// registerConsensusTools adds the multi-provider consensus, synthesis,
// council, and cache tools.
func (s *Server) registerConsensusTools() {
	s.mcp.AddTool(mcp.NewTool("consensus",
		mcp.WithDescription("Ask both Gemini and Codex the same question in parallel and return both answers for comparison."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The question to ask both AIs.")),
		mcp.WithString("gemini_model", mcp.Description("Optional Gemini model (e.g. gemini-2.0-flash).")),
		mcp.WithBoolean("use_cache", mcp.Description("Use a cached result if available (default: true).")),
	), s.handleConsensus)

	s.mcp.AddTool(mcp.NewTool("consensus_with_synthesis",
		mcp.WithDescription("Ask both Gemini and Codex in parallel, then synthesize the answers into a combined recommendation."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The question to ask both AIs.")),
		mcp.WithString("gemini_model", mcp.Description("Optional Gemini model.")),
		mcp.WithBoolean("use_cache", mcp.Description("Use a cached result if available (default: true).")),
	), s.handleConsensusWithSynthesis)

	s.mcp.AddTool(mcp.NewTool("council",
		mcp.WithDescription("3-stage LLM council: all providers answer in parallel, cross peer-review each other, and a chairman synthesizes the final answer."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The question to ask the council.")),
		mcp.WithString("gemini_model", mcp.Description("Optional Gemini model.")),
		mcp.WithString("chairman", mcp.Description("Chairman model for the final synthesis: gemini, codex, or copilot (default: gemini).")),
		mcp.WithBoolean("use_cache", mcp.Description("Use a cached result if available (default: true).")),
	), s.handleCouncil)

	s.mcp.AddTool(mcp.NewTool("get_last_consensus",
		mcp.WithDescription("Return the most recent cached consensus, synthesis, or council result without re-running queries."),
	), s.handleGetLastConsensus)

	s.mcp.AddTool(mcp.NewTool("clear_consensus_cache",
		mcp.WithDescription("Clear all cached consensus results and return how many were removed."),
	), s.handleClearConsensusCache)
}

func (s *Server) handleConsensus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return nil, err
	}
	model := req.GetString("gemini_model", "")
	useCache := req.GetBool("use_cache", true)

	result, cached, err := s.deps.Engine.Consensus(ctx, prompt, model, useCache)
	if err != nil {
		return errorResult("consensus failed: %v", err), nil
	}
	return textResult(cachedPrefix(cached) + result.FormatMarkdown()), nil
}

func (s *Server) handleConsensusWithSynthesis(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return nil, err
	}
	model := req.GetString("gemini_model", "")
	useCache := req.GetBool("use_cache", true)

	result, cached, err := s.deps.Engine.ConsensusWithSynthesis(ctx, prompt, model, useCache)
	if err != nil {
		return errorResult("synthesis failed: %v", err), nil
	}
	return textResult(cachedPrefix(cached) + result.FormatMarkdown()), nil
}

func (s *Server) handleCouncil(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return nil, err
	}
	model := req.GetString("gemini_model", "")
	chairman := req.GetString("chairman", "gemini")
	useCache := req.GetBool("use_cache", true)

	result, cached, err := s.deps.Engine.Council(ctx, prompt, model, chairman, useCache)
	if err != nil {
		return errorResult("council failed: %v", err), nil
	}
	return textResult(cachedPrefix(cached) + result.FormatMarkdown()), nil
}

func (s *Server) handleGetLastConsensus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entry, raw, err := s.deps.Cache.Last()
	if err != nil {
		return errorResult("reading cache failed: %v", err), nil
	}
	if entry == nil {
		return textResult("No cached consensus results found."), nil
	}

	body := formatCached(entry.Type, raw)
	return textResult(fmt.Sprintf("**Last Query:** %s\n\n%s", entry.Prompt, body)), nil
}

func (s *Server) handleClearConsensusCache(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := s.deps.Cache.Clear()
	if err != nil {
		return errorResult("clearing cache failed: %v", err), nil
	}
	return textResult(fmt.Sprintf("Cleared %d cached consensus result(s).", count)), nil
}

func cachedPrefix(cached bool) string {
	if cached {
		return "[CACHED]\n\n"
	}
	return ""
}

// formatCached renders a raw cached payload by its recorded type,
// falling back to the raw JSON when it no longer parses.
func formatCached(resultType string, raw json.RawMessage) string {
	switch resultType {
	case "council":
		var r consensus.CouncilResult
		if json.Unmarshal(raw, &r) == nil {
			return r.FormatMarkdown()
		}
	case "synthesis":
		var r consensus.SynthesisResult
		if json.Unmarshal(raw, &r) == nil {
			return r.FormatMarkdown()
		}
	default:
		var r consensus.ConsensusResult
		if json.Unmarshal(raw, &r) == nil {
			return r.FormatMarkdown()
		}
	}
	return string(raw)
}
