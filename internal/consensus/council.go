package consensus

import (
	"context"
	"fmt"
	"strings"

	"github.com/quorum-ai/quorum/internal/provider"
	"github.com/quorum-ai/quorum/pkg/models"
)

// Council runs the 3-stage pipeline: all members answer in parallel,
// each member peer-reviews the others' successful answers in parallel,
// and the chairman synthesizes everything into a final answer.
func (e *Engine) Council(ctx context.Context, prompt, model, chairman string, useCache bool) (*CouncilResult, bool, error) {
	switch chairman {
	case "":
		chairman = provider.ProviderGemini
	case provider.ProviderGemini, provider.ProviderCodex, provider.ProviderCopilot:
	default:
		return nil, false, fmt.Errorf("chairman must be %q, %q, or %q",
			provider.ProviderGemini, provider.ProviderCodex, provider.ProviderCopilot)
	}

	if useCache && e.cache != nil {
		var cached CouncilResult
		if ok, err := e.cache.Get(prompt, model, &cached); err == nil && ok && cached.ChairmanSynthesis != nil {
			return &cached, true, nil
		}
	}

	// Stage 1: first opinions.
	answers := askParallel(ctx, []queryLeg{
		{provider: provider.ProviderGemini, fn: e.gemini, prompt: prompt, model: model},
		{provider: provider.ProviderCodex, fn: e.codex, prompt: prompt},
		{provider: provider.ProviderCopilot, fn: e.copilot, prompt: prompt},
	})
	geminiResp, codexResp, copilotResp := answers[0], answers[1], answers[2]

	// Stage 2: cross peer-reviews, in parallel. Each member reviews
	// the OTHER members' answers; failed answers are not reviewed, and
	// a member with no successful peers skips its review call entirely.
	var geminiReview, codexReview, copilotReview PeerReview
	done := make(chan struct{})
	go func() {
		geminiReview = e.review(ctx, provider.ProviderGemini, e.gemini, model, prompt, codexResp, copilotResp)
		done <- struct{}{}
	}()
	go func() {
		codexReview = e.review(ctx, provider.ProviderCodex, e.codex, "", prompt, geminiResp, copilotResp)
		done <- struct{}{}
	}()
	go func() {
		copilotReview = e.review(ctx, provider.ProviderCopilot, e.copilot, "", prompt, geminiResp, codexResp)
		done <- struct{}{}
	}()
	for i := 0; i < 3; i++ {
		<-done
	}

	// Stage 3: chairman synthesis over all answers and reviews.
	chairmanPrompt := buildChairmanPrompt(prompt, geminiResp, codexResp, copilotResp,
		geminiReview, codexReview, copilotReview)

	var synthesis *models.Response
	switch chairman {
	case provider.ProviderGemini:
		synthesis = ask(ctx, chairman, e.gemini, chairmanPrompt, model)
	case provider.ProviderCodex:
		synthesis = ask(ctx, chairman, e.codex, chairmanPrompt, "")
	case provider.ProviderCopilot:
		synthesis = ask(ctx, chairman, e.copilot, chairmanPrompt, "")
	}

	result := &CouncilResult{
		Gemini:            geminiResp,
		Codex:             codexResp,
		Copilot:           copilotResp,
		GeminiReview:      geminiReview,
		CodexReview:       codexReview,
		CopilotReview:     copilotReview,
		Chairman:          chairman,
		ChairmanSynthesis: synthesis,
		Timestamp:         now(),
	}
	e.store(prompt, model, "council", result)
	return result, false, nil
}

// review asks one member to evaluate its peers' successful answers.
// Peer answers that failed are excluded; with no successful peers the
// review is skipped without calling the provider.
func (e *Engine) review(ctx context.Context, reviewer string, fn QueryFunc, model, question string, peers ...*models.Response) PeerReview {
	var answers []string
	for _, p := range peers {
		if p != nil && p.Success {
			answers = append(answers, p.Response)
		}
	}
	if len(answers) == 0 {
		return PeerReview{
			Reviewer: reviewer,
			Success:  false,
			Error:    "no successful peer answers to review",
		}
	}

	resp := ask(ctx, reviewer, fn, buildReviewPrompt(question, answers), model)
	review := PeerReview{Reviewer: reviewer, Success: resp.Success, Error: resp.Error}
	if resp.Success {
		review.Review = resp.Response
	}
	return review
}

// buildReviewPrompt produces an anonymized review prompt. Answers are
// labeled A, B, ... so the reviewer cannot tell which model wrote what.
func buildReviewPrompt(question string, answers []string) string {
	var b strings.Builder
	if len(answers) == 1 {
		b.WriteString("An AI model answered the question below. Please evaluate the answer.\n\n")
	} else {
		fmt.Fprintf(&b, "%d different AI models answered the question below. Please evaluate each answer.\n\n", len(answers))
	}
	fmt.Fprintf(&b, "QUESTION: %s\n", question)
	for i, a := range answers {
		fmt.Fprintf(&b, "\nANSWER %c:\n%s\n", 'A'+i, a)
	}
	b.WriteString(`
Please evaluate on:
1. Correctness: is the answer factually accurate?
2. Completeness: are all aspects of the question addressed?
3. Clarity: is the answer clear and understandable?
4. Strengths: what are the best parts of the answer?
5. Weaknesses: what gaps or mistakes are there?
6. Overall: score each answer from 1 to 10 with justification.`)
	return b.String()
}

// buildChairmanPrompt assembles the full picture for the final
// synthesis: every answer and every review, failures rendered as
// error text.
func buildChairmanPrompt(question string, gemini, codex, copilot *models.Response, geminiReview, codexReview, copilotReview PeerReview) string {
	return fmt.Sprintf(`You are the chairman of an LLM council. Answers from three different AI models and their cross-reviews are given below. Synthesize all of it into a final, comprehensive answer.

QUESTION: %s

--- MODEL A ANSWER ---
%s

--- MODEL B ANSWER ---
%s

--- MODEL C ANSWER ---
%s

--- MODEL A'S REVIEW (of models B and C) ---
%s

--- MODEL B'S REVIEW (of models A and C) ---
%s

--- MODEL C'S REVIEW (of models A and B) ---
%s

Please:
1. Combine the strengths of the answers
2. Address the weaknesses raised in the reviews
3. Resolve any inconsistencies
4. Produce a comprehensive, accurate, and balanced final synthesis`,
		question,
		respText(gemini), respText(codex), respText(copilot),
		reviewText(geminiReview), reviewText(codexReview), reviewText(copilotReview))
}
