package consensus

import (
	"fmt"
	"strings"
	"time"

	"github.com/quorum-ai/quorum/pkg/models"
)

// ConsensusResult holds both providers' answers to the same prompt.
type ConsensusResult struct {
	Gemini    *models.Response `json:"gemini"`
	Codex     *models.Response `json:"codex"`
	Timestamp string           `json:"timestamp"`
}

// SynthesisResult extends a consensus with a combined synthesis answer.
type SynthesisResult struct {
	Gemini    *models.Response `json:"gemini"`
	Codex     *models.Response `json:"codex"`
	Synthesis *models.Response `json:"synthesis"`
	Timestamp string           `json:"timestamp"`
}

// PeerReview is one council member's review of the other members'
// answers.
type PeerReview struct {
	Reviewer string `json:"reviewer"`
	Review   string `json:"review"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// CouncilResult holds the full 3-stage pipeline output: initial
// answers, cross peer-reviews, and the chairman synthesis.
type CouncilResult struct {
	Gemini            *models.Response `json:"gemini"`
	Codex             *models.Response `json:"codex"`
	Copilot           *models.Response `json:"copilot"`
	GeminiReview      PeerReview       `json:"gemini_review"`
	CodexReview       PeerReview       `json:"codex_review"`
	CopilotReview     PeerReview       `json:"copilot_review"`
	Chairman          string           `json:"chairman"`
	ChairmanSynthesis *models.Response `json:"chairman_synthesis"`
	Timestamp         string           `json:"timestamp"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// respText renders a response for display, substituting the error when
// the call failed.
func respText(r *models.Response) string {
	if r == nil {
		return "Error: no response"
	}
	if r.Success {
		return r.Response
	}
	return "Error: " + r.Error
}

func reviewText(r PeerReview) string {
	if r.Success {
		return r.Review
	}
	return "Error: " + r.Error
}

// FormatMarkdown renders the consensus for tool output.
func (r *ConsensusResult) FormatMarkdown() string {
	var b strings.Builder
	b.WriteString("# Consensus Result\n\n")
	fmt.Fprintf(&b, "## Gemini Response:\n%s\n\n", respText(r.Gemini))
	fmt.Fprintf(&b, "## Codex Response:\n%s\n\n", respText(r.Codex))
	fmt.Fprintf(&b, "_Timestamp: %s_", r.Timestamp)
	return b.String()
}

// FormatMarkdown renders the synthesis result for tool output.
func (r *SynthesisResult) FormatMarkdown() string {
	var b strings.Builder
	b.WriteString("# Consensus with Synthesis\n\n")
	fmt.Fprintf(&b, "## Gemini Response:\n%s\n\n", respText(r.Gemini))
	fmt.Fprintf(&b, "## Codex Response:\n%s\n\n", respText(r.Codex))
	fmt.Fprintf(&b, "## Synthesis:\n%s\n\n", respText(r.Synthesis))
	fmt.Fprintf(&b, "_Timestamp: %s_", r.Timestamp)
	return b.String()
}

// FormatMarkdown renders the council pipeline output.
func (r *CouncilResult) FormatMarkdown() string {
	var b strings.Builder
	b.WriteString("# LLM Council Result\n\n")
	b.WriteString("## Stage 1: First Opinions\n\n")
	fmt.Fprintf(&b, "### Gemini Response:\n%s\n\n", respText(r.Gemini))
	fmt.Fprintf(&b, "### Codex Response:\n%s\n\n", respText(r.Codex))
	fmt.Fprintf(&b, "### Copilot Response:\n%s\n\n", respText(r.Copilot))
	b.WriteString("---\n\n")
	b.WriteString("## Stage 2: Peer Reviews\n\n")
	fmt.Fprintf(&b, "### Gemini's Review (of Codex & Copilot):\n%s\n\n", reviewText(r.GeminiReview))
	fmt.Fprintf(&b, "### Codex's Review (of Gemini & Copilot):\n%s\n\n", reviewText(r.CodexReview))
	fmt.Fprintf(&b, "### Copilot's Review (of Gemini & Codex):\n%s\n\n", reviewText(r.CopilotReview))
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "## Stage 3: Chairman Synthesis (by %s):\n%s\n\n", r.Chairman, respText(r.ChairmanSynthesis))
	fmt.Fprintf(&b, "_Timestamp: %s_", r.Timestamp)
	return b.String()
}
