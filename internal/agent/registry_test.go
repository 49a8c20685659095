package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/quorum-ai/quorum/pkg/models"
)

func newTestWorker(name string, typ models.AgentType, caps ...models.Capability) *Worker {
	run := func(ctx context.Context, prompt string) *models.Response {
		return &models.Response{Success: true}
	}
	return NewWorker(name, typ, caps, run, quietLog())
}

func TestRegistryRegisterGet(t *testing.T) {
	r := NewRegistry()
	w := newTestWorker("gemini-worker", models.AgentTypeGemini)
	r.Register(w)

	if got := r.Get("gemini-worker"); got != Agent(w) {
		t.Error("Get returned a different agent")
	}
	if got := r.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
}

func TestRegistryReregistrationReplaces(t *testing.T) {
	r := NewRegistry()
	first := newTestWorker("worker-a", models.AgentTypeGemini)
	second := newTestWorker("worker-a", models.AgentTypeCodex)

	r.Register(first)
	r.Register(second)

	if r.Count() != 1 {
		t.Fatalf("count = %d, want 1 after re-registration", r.Count())
	}
	if got := r.Get("worker-a").Info().Type; got != models.AgentTypeCodex {
		t.Errorf("agent type = %q, want codex (replacement)", got)
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Register(newTestWorker("gemini-worker", models.AgentTypeGemini))
	r.Register(newTestWorker("codex-worker", models.AgentTypeCodex))

	infos := r.List()
	if len(infos) != 2 {
		t.Fatalf("list length = %d, want 2", len(infos))
	}
	names := map[string]bool{}
	for _, info := range infos {
		names[info.Name] = true
		if info.Status != "idle" {
			t.Errorf("agent %s status = %q, want idle", info.Name, info.Status)
		}
	}
	if !names["gemini-worker"] || !names["codex-worker"] {
		t.Errorf("list missing agents: %v", names)
	}
}

func TestRegistryGetByCapability(t *testing.T) {
	r := NewRegistry()
	r.Register(newTestWorker("gemini-worker", models.AgentTypeGemini,
		models.CapabilityGeneralQA, models.CapabilitySynthesis))
	r.Register(newTestWorker("codex-worker", models.AgentTypeCodex,
		models.CapabilityCodeGeneration))

	infos := r.GetByCapability(models.CapabilitySynthesis)
	if len(infos) != 1 || infos[0].Name != "gemini-worker" {
		t.Errorf("GetByCapability(synthesis) = %v, want only gemini-worker", infos)
	}

	if infos := r.GetByCapability(models.CapabilityCodeReview); len(infos) != 0 {
		t.Errorf("GetByCapability(code_review) = %v, want empty", infos)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			r.Register(newTestWorker("gemini-worker", models.AgentTypeGemini))
		}()
		go func() {
			defer wg.Done()
			_ = r.List()
		}()
		go func() {
			defer wg.Done()
			_ = r.Get("gemini-worker")
		}()
	}
	wg.Wait()

	if r.Count() != 1 {
		t.Errorf("count = %d, want 1", r.Count())
	}
}
