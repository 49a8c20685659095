// Package consensus runs the same prompt against multiple provider
// CLIs in parallel and combines the answers: plain side-by-side
// consensus, consensus with a synthesis pass, and a 3-stage council
// pipeline with cross peer-reviews.
package consensus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/quorum-ai/quorum/internal/cache"
	"github.com/quorum-ai/quorum/internal/config"
	"github.com/quorum-ai/quorum/internal/provider"
	"github.com/quorum-ai/quorum/pkg/models"
)

// QueryFunc asks one provider a prompt. The model argument is only
// meaningful for providers that support model selection.
type QueryFunc func(ctx context.Context, prompt, model string) *models.Response

// Engine coordinates parallel provider queries and caches results.
type Engine struct {
	gemini  QueryFunc
	codex   QueryFunc
	copilot QueryFunc
	cache   *cache.Store
	log     *logrus.Logger
}

// NewEngine wires the engine to the real provider CLIs.
func NewEngine(inv *provider.Invoker, cfg config.ProvidersConfig, store *cache.Store, log *logrus.Logger) *Engine {
	gemini := func(ctx context.Context, prompt, model string) *models.Response {
		return inv.Invoke(ctx, provider.GeminiInvocation(cfg.Gemini, prompt, model, 0))
	}
	codex := func(ctx context.Context, prompt, _ string) *models.Response {
		return inv.Invoke(ctx, provider.CodexInvocation(cfg.Codex, prompt, 0))
	}
	copilot := func(ctx context.Context, prompt, _ string) *models.Response {
		return inv.Invoke(ctx, provider.CopilotInvocation(cfg.Copilot, prompt, 0))
	}
	return NewEngineWithQueries(gemini, codex, copilot, store, log)
}

// NewEngineWithQueries builds an engine from explicit query functions.
// Tests inject stubs here.
func NewEngineWithQueries(gemini, codex, copilot QueryFunc, store *cache.Store, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		gemini:  gemini,
		codex:   codex,
		copilot: copilot,
		cache:   store,
		log:     log,
	}
}

// ask runs one query, converting a panic in the provider path into a
// failure response so one leg can never take down the others.
func ask(ctx context.Context, providerName string, fn QueryFunc, prompt, model string) (resp *models.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = &models.Response{
				Provider: providerName,
				Success:  false,
				Error:    fmt.Sprintf("unexpected error: %v", r),
			}
		}
	}()
	resp = fn(ctx, prompt, model)
	if resp == nil {
		resp = &models.Response{
			Provider: providerName,
			Success:  false,
			Error:    "provider returned no response",
		}
	}
	return resp
}

// askParallel fans the prompts out and waits for all answers. Slots
// with a nil QueryFunc are skipped and left nil in the result.
func askParallel(ctx context.Context, legs []queryLeg) []*models.Response {
	results := make([]*models.Response, len(legs))
	done := make(chan int, len(legs))
	for i, leg := range legs {
		go func(i int, leg queryLeg) {
			results[i] = ask(ctx, leg.provider, leg.fn, leg.prompt, leg.model)
			done <- i
		}(i, leg)
	}
	for range legs {
		<-done
	}
	return results
}

type queryLeg struct {
	provider string
	fn       QueryFunc
	prompt   string
	model    string
}

// Consensus asks gemini and codex the same prompt in parallel. A
// failure in one leg is recorded on that provider's response only.
func (e *Engine) Consensus(ctx context.Context, prompt, model string, useCache bool) (*ConsensusResult, bool, error) {
	if useCache && e.cache != nil {
		// Results of all kinds share the key space; only accept an
		// entry that is shaped like a plain consensus.
		var cached struct {
			ConsensusResult
			Synthesis         json.RawMessage `json:"synthesis"`
			ChairmanSynthesis json.RawMessage `json:"chairman_synthesis"`
		}
		ok, err := e.cache.Get(prompt, "", &cached)
		if err == nil && ok && cached.Gemini != nil && cached.Synthesis == nil && cached.ChairmanSynthesis == nil {
			return &cached.ConsensusResult, true, nil
		}
	}

	results := askParallel(ctx, []queryLeg{
		{provider: provider.ProviderGemini, fn: e.gemini, prompt: prompt, model: model},
		{provider: provider.ProviderCodex, fn: e.codex, prompt: prompt},
	})

	result := &ConsensusResult{
		Gemini:    results[0],
		Codex:     results[1],
		Timestamp: now(),
	}
	e.store(prompt, "", "consensus", result)
	return result, false, nil
}

// ConsensusWithSynthesis runs a consensus and then asks gemini to
// compare and synthesize the two answers.
func (e *Engine) ConsensusWithSynthesis(ctx context.Context, prompt, model string, useCache bool) (*SynthesisResult, bool, error) {
	if useCache && e.cache != nil {
		var cached SynthesisResult
		if ok, err := e.cache.Get(prompt, "", &cached); err == nil && ok && cached.Synthesis != nil {
			return &cached, true, nil
		}
	}

	results := askParallel(ctx, []queryLeg{
		{provider: provider.ProviderGemini, fn: e.gemini, prompt: prompt, model: model},
		{provider: provider.ProviderCodex, fn: e.codex, prompt: prompt},
	})
	geminiResp, codexResp := results[0], results[1]

	synthesisPrompt := buildSynthesisPrompt(prompt, geminiResp, codexResp)
	synthesis := ask(ctx, provider.ProviderGemini, e.gemini, synthesisPrompt, model)

	result := &SynthesisResult{
		Gemini:    geminiResp,
		Codex:     codexResp,
		Synthesis: synthesis,
		Timestamp: now(),
	}
	e.store(prompt, "", "synthesis", result)
	return result, false, nil
}

// store caches a result, logging failures instead of surfacing them.
// A cache write problem should not fail a query that already has its
// answers.
func (e *Engine) store(prompt, model, resultType string, result any) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Put(prompt, model, resultType, result); err != nil {
		e.log.Warnf("caching %s result failed: %v", resultType, err)
	}
}

func buildSynthesisPrompt(question string, gemini, codex *models.Response) string {
	return fmt.Sprintf(`I received answers to the same question from two different AIs. Please compare and synthesize them.

QUESTION: %s

GEMINI ANSWER:
%s

CODEX ANSWER:
%s

Please:
1. Identify the common ground
2. Identify the differences
3. Recommend the best approach`, question, respText(gemini), respText(codex))
}
