// Package agent provides worker agents and their registry. A worker
// wraps one provider CLI behind a uniform execute contract; variants
// differ only in the wrapped command and declared capabilities.
package agent

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/quorum-ai/quorum/internal/config"
	"github.com/quorum-ai/quorum/internal/provider"
	"github.com/quorum-ai/quorum/pkg/models"
)

// Agent is a named worker capable of executing a prompt.
type Agent interface {
	// Name returns the unique agent name.
	Name() string
	// Info returns a snapshot descriptor including current status.
	Info() models.AgentInfo
	// Execute runs the prompt and returns a uniform response. The
	// context bounds execution; exceeding it kills the underlying
	// subprocess.
	Execute(ctx context.Context, prompt string, orchCtx *models.OrchestrationContext) *models.Response
}

// ExecuteFunc runs a prompt against a provider.
type ExecuteFunc func(ctx context.Context, prompt string) *models.Response

// Worker is the single agent implementation. The closed set of variants
// (gemini, codex, copilot) is built by the constructors below; behavior
// is identical aside from the wrapped command and capability tags.
type Worker struct {
	name string
	typ  models.AgentType
	caps []models.Capability
	run  ExecuteFunc
	log  *logrus.Logger

	mu     sync.Mutex
	status string
}

// NewWorker creates a worker with an explicit execute function.
// Production variants use the provider constructors; tests inject stubs.
func NewWorker(name string, typ models.AgentType, caps []models.Capability, run ExecuteFunc, log *logrus.Logger) *Worker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Worker{
		name:   name,
		typ:    typ,
		caps:   caps,
		run:    run,
		log:    log,
		status: "idle",
	}
}

// NewGeminiWorker creates the worker backed by the Gemini CLI.
func NewGeminiWorker(inv *provider.Invoker, cfg config.GeminiConfig, log *logrus.Logger) *Worker {
	run := func(ctx context.Context, prompt string) *models.Response {
		return inv.Invoke(ctx, provider.GeminiInvocation(cfg, prompt, "", 0))
	}
	caps := []models.Capability{
		models.CapabilityGeneralQA,
		models.CapabilityCodeGeneration,
		models.CapabilitySynthesis,
	}
	return NewWorker("gemini-worker", models.AgentTypeGemini, caps, run, log)
}

// NewCodexWorker creates the worker backed by the Codex CLI.
func NewCodexWorker(inv *provider.Invoker, cfg config.CodexConfig, log *logrus.Logger) *Worker {
	run := func(ctx context.Context, prompt string) *models.Response {
		return inv.Invoke(ctx, provider.CodexInvocation(cfg, prompt, 0))
	}
	caps := []models.Capability{
		models.CapabilityCodeGeneration,
		models.CapabilityCodeReview,
	}
	return NewWorker("codex-worker", models.AgentTypeCodex, caps, run, log)
}

// NewCopilotWorker creates the worker backed by the Copilot CLI.
func NewCopilotWorker(inv *provider.Invoker, cfg config.CopilotConfig, log *logrus.Logger) *Worker {
	run := func(ctx context.Context, prompt string) *models.Response {
		return inv.Invoke(ctx, provider.CopilotInvocation(cfg, prompt, 0))
	}
	caps := []models.Capability{
		models.CapabilityGeneralQA,
		models.CapabilityCodeReview,
	}
	return NewWorker("copilot-worker", models.AgentTypeCopilot, caps, run, log)
}

// Name returns the unique agent name.
func (w *Worker) Name() string { return w.name }

// Info returns a snapshot descriptor of the worker.
func (w *Worker) Info() models.AgentInfo {
	w.mu.Lock()
	status := w.status
	w.mu.Unlock()

	caps := make([]models.Capability, len(w.caps))
	copy(caps, w.caps)
	return models.AgentInfo{
		Name:         w.name,
		Type:         w.typ,
		Capabilities: caps,
		Status:       status,
	}
}

// Execute runs the prompt, toggling status busy/idle around the call.
func (w *Worker) Execute(ctx context.Context, prompt string, orchCtx *models.OrchestrationContext) *models.Response {
	w.setStatus("busy")
	defer w.setStatus("idle")

	if orchCtx != nil {
		w.log.WithFields(logrus.Fields{
			"agent":      w.name,
			"request_id": orchCtx.RequestID,
			"source":     orchCtx.SourceOp,
			"depth":      orchCtx.CurrentDepth,
		}).Info("worker executing")
	}

	return w.run(ctx, prompt)
}

func (w *Worker) setStatus(status string) {
	w.mu.Lock()
	w.status = status
	w.mu.Unlock()
}

// Verify Worker implements Agent at compile time.
var _ Agent = (*Worker)(nil)
