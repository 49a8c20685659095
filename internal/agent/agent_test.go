package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/quorum-ai/quorum/pkg/models"
)

// quietLog returns a logger that discards everything below panic.
func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestWorkerExecute(t *testing.T) {
	var gotPrompt string
	run := func(ctx context.Context, prompt string) *models.Response {
		gotPrompt = prompt
		return &models.Response{Provider: "gemini", Response: "4", Success: true}
	}
	w := NewWorker("gemini-worker", models.AgentTypeGemini,
		[]models.Capability{models.CapabilityGeneralQA}, run, quietLog())

	resp := w.Execute(context.Background(), "what is 2+2", nil)
	if !resp.Success {
		t.Fatalf("execute failed: %s", resp.Error)
	}
	if resp.Response != "4" {
		t.Errorf("response = %q, want 4", resp.Response)
	}
	if gotPrompt != "what is 2+2" {
		t.Errorf("prompt = %q, want original prompt", gotPrompt)
	}
}

func TestWorkerStatusToggle(t *testing.T) {
	statusDuring := make(chan string, 1)
	var w *Worker
	run := func(ctx context.Context, prompt string) *models.Response {
		statusDuring <- w.Info().Status
		return &models.Response{Success: true}
	}
	w = NewWorker("codex-worker", models.AgentTypeCodex, nil, run, quietLog())

	if got := w.Info().Status; got != "idle" {
		t.Fatalf("initial status = %q, want idle", got)
	}

	w.Execute(context.Background(), "hi", nil)

	if got := <-statusDuring; got != "busy" {
		t.Errorf("status during execute = %q, want busy", got)
	}
	if got := w.Info().Status; got != "idle" {
		t.Errorf("status after execute = %q, want idle", got)
	}
}

func TestWorkerStatusRestoredOnPanicPath(t *testing.T) {
	run := func(ctx context.Context, prompt string) *models.Response {
		panic("provider blew up")
	}
	w := NewWorker("gemini-worker", models.AgentTypeGemini, nil, run, quietLog())

	func() {
		defer func() { recover() }()
		w.Execute(context.Background(), "hi", nil)
	}()

	if got := w.Info().Status; got != "idle" {
		t.Errorf("status after panic = %q, want idle", got)
	}
}

func TestWorkerExecuteWithContext(t *testing.T) {
	run := func(ctx context.Context, prompt string) *models.Response {
		return &models.Response{Success: true, Response: "ok"}
	}
	w := NewWorker("gemini-worker", models.AgentTypeGemini, nil, run, quietLog())

	orchCtx := models.NewOrchestrationContext("agent_handoff")
	resp := w.Execute(context.Background(), "hi", orchCtx)
	if !resp.Success {
		t.Fatalf("execute failed: %s", resp.Error)
	}
}

func TestWorkerInfoCapabilitiesCopied(t *testing.T) {
	caps := []models.Capability{models.CapabilityGeneralQA}
	w := NewWorker("gemini-worker", models.AgentTypeGemini, caps, nil, quietLog())

	info := w.Info()
	info.Capabilities[0] = models.CapabilityCodeReview

	if got := w.Info().Capabilities[0]; got != models.CapabilityGeneralQA {
		t.Errorf("capabilities leaked: %q", got)
	}
}

func TestWorkerConcurrentInfo(t *testing.T) {
	run := func(ctx context.Context, prompt string) *models.Response {
		return &models.Response{Success: true}
	}
	w := NewWorker("gemini-worker", models.AgentTypeGemini, nil, run, quietLog())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			w.Execute(context.Background(), "hi", nil)
		}()
		go func() {
			defer wg.Done()
			_ = w.Info()
		}()
	}
	wg.Wait()
}
