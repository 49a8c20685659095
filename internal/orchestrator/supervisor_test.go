package orchestrator

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quorum-ai/quorum/internal/agent"
	"github.com/quorum-ai/quorum/internal/config"
	"github.com/quorum-ai/quorum/internal/store"
	"github.com/quorum-ai/quorum/pkg/models"
)

// spyAgent counts executions and returns a canned response.
type spyAgent struct {
	worker *agent.Worker
	calls  int32
}

// newSpyAgent builds a spy worker with the given behavior.
func newSpyAgent(name string, delay time.Duration, resp *models.Response, panicMsg string) *spyAgent {
	spy := &spyAgent{}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	spy.worker = agent.NewWorker(name, models.AgentTypeGemini,
		[]models.Capability{models.CapabilityGeneralQA},
		func(ctx context.Context, prompt string) *models.Response {
			atomic.AddInt32(&spy.calls, 1)
			if panicMsg != "" {
				panic(panicMsg)
			}
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
				}
			}
			return resp
		}, log)
	return spy
}

func (s *spyAgent) callCount() int32 {
	return atomic.LoadInt32(&s.calls)
}

// testEnv bundles a supervisor with its stores for assertions.
type testEnv struct {
	sup      *Supervisor
	registry *agent.Registry
	tasks    *store.TaskStore
	inbox    *store.Inbox
}

func setupSupervisor(t *testing.T, maskErrors bool) *testEnv {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	registry := agent.NewRegistry()
	tasks := store.NewTaskStore(db)
	inbox := store.NewInbox(db, 10)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	sup := NewSupervisor(registry, tasks, inbox,
		config.HandoffConfig{MaxDepth: 3, MaskErrors: maskErrors},
		5*time.Second, log)
	return &testEnv{sup: sup, registry: registry, tasks: tasks, inbox: inbox}
}

// waitForTerminal polls until the task reaches a terminal state.
func waitForTerminal(t *testing.T, tasks *store.TaskStore, id string) *models.Task {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		task, err := tasks.Get(id)
		if err != nil {
			t.Fatalf("get task: %v", err)
		}
		if task != nil && task.Status.Terminal() {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never reached a terminal state", id)
	return nil
}

func TestHandoffSuccess(t *testing.T) {
	env := setupSupervisor(t, false)
	spy := newSpyAgent("worker-a", 0, &models.Response{Success: true, Response: "pong"}, "")
	env.registry.Register(spy.worker)

	res := env.sup.Handoff(context.Background(), "worker-a", "ping", 0, nil)
	if !res.Success {
		t.Fatalf("handoff failed: %s", res.Error)
	}
	if res.Response != "pong" {
		t.Errorf("response = %q, want pong", res.Response)
	}
	if spy.callCount() != 1 {
		t.Errorf("agent executed %d times, want 1", spy.callCount())
	}
}

func TestHandoffUnknownAgent(t *testing.T) {
	env := setupSupervisor(t, false)

	res := env.sup.Handoff(context.Background(), "ghost", "ping", 0, nil)
	if res.Success {
		t.Fatal("expected not-found failure")
	}
	if !strings.Contains(res.Error, "not found") {
		t.Errorf("error = %q, want not-found", res.Error)
	}

	// No rows created anywhere.
	tasks, _ := env.tasks.List("", "")
	if len(tasks) != 0 {
		t.Errorf("handoff to unknown agent created %d tasks", len(tasks))
	}
	msgs, _ := env.inbox.GetMessages("ghost", false, 0)
	if len(msgs) != 0 {
		t.Errorf("handoff to unknown agent created %d messages", len(msgs))
	}
}

func TestHandoffDepthExceeded(t *testing.T) {
	env := setupSupervisor(t, false)
	spy := newSpyAgent("worker-a", 0, &models.Response{Success: true}, "")
	env.registry.Register(spy.worker)

	orchCtx := models.NewOrchestrationContext("agent_handoff")
	orchCtx.CurrentDepth = 4 // max is 3

	res := env.sup.Handoff(context.Background(), "worker-a", "ping", 0, orchCtx)
	if res.Success {
		t.Fatal("expected depth-exceeded failure")
	}
	if !strings.Contains(res.Error, "3") {
		t.Errorf("error = %q, should mention the configured maximum", res.Error)
	}
	if spy.callCount() != 0 {
		t.Errorf("agent executed %d times, want 0", spy.callCount())
	}
}

func TestHandoffDepthAtMaxAllowed(t *testing.T) {
	env := setupSupervisor(t, false)
	spy := newSpyAgent("worker-a", 0, &models.Response{Success: true, Response: "ok"}, "")
	env.registry.Register(spy.worker)

	orchCtx := models.NewOrchestrationContext("agent_handoff")
	orchCtx.CurrentDepth = 3

	res := env.sup.Handoff(context.Background(), "worker-a", "ping", 0, orchCtx)
	if !res.Success {
		t.Fatalf("handoff at max depth should succeed, got %s", res.Error)
	}
}

func TestHandoffProviderFailureUnmasked(t *testing.T) {
	env := setupSupervisor(t, true) // masking on
	spy := newSpyAgent("worker-a", 0, &models.Response{Success: false, Error: "gemini command not found"}, "")
	env.registry.Register(spy.worker)

	res := env.sup.Handoff(context.Background(), "worker-a", "ping", 0, nil)
	if res.Success {
		t.Fatal("expected provider failure")
	}
	// Provider-reported errors pass through even with masking enabled.
	if res.Error != "gemini command not found" {
		t.Errorf("error = %q, want provider error verbatim", res.Error)
	}
}

func TestHandoffTimeout(t *testing.T) {
	env := setupSupervisor(t, false)
	spy := newSpyAgent("worker-a", time.Second, &models.Response{Success: true}, "")
	env.registry.Register(spy.worker)

	start := time.Now()
	res := env.sup.Handoff(context.Background(), "worker-a", "ping", 30*time.Millisecond, nil)
	if res.Success {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(res.Error, "timed out after 30ms") {
		t.Errorf("error = %q, want timeout referencing the bound", res.Error)
	}
	if res.Duration <= 0 {
		t.Error("duration should be measured on timeout path")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("handoff did not return promptly on timeout")
	}
}

func TestHandoffPanicMasked(t *testing.T) {
	env := setupSupervisor(t, true)
	spy := newSpyAgent("worker-a", 0, nil, "internal path /secret/file leaked")
	env.registry.Register(spy.worker)

	res := env.sup.Handoff(context.Background(), "worker-a", "ping", 0, nil)
	if res.Success {
		t.Fatal("expected failure from panicking agent")
	}
	if res.Error != maskedError {
		t.Errorf("error = %q, want masked generic message", res.Error)
	}
	if strings.Contains(res.Error, "/secret/file") {
		t.Error("masked error leaked internal detail")
	}
}

func TestHandoffPanicUnmasked(t *testing.T) {
	env := setupSupervisor(t, false)
	spy := newSpyAgent("worker-a", 0, nil, "boom")
	env.registry.Register(spy.worker)

	res := env.sup.Handoff(context.Background(), "worker-a", "ping", 0, nil)
	if res.Success {
		t.Fatal("expected failure from panicking agent")
	}
	if !strings.Contains(res.Error, "boom") {
		t.Errorf("error = %q, want panic detail with masking off", res.Error)
	}
}

func TestAssignUnknownAgent(t *testing.T) {
	env := setupSupervisor(t, false)

	res := env.sup.Assign("ghost", "ping", 0, nil)
	if res.Status != models.TaskStatusFailed {
		t.Errorf("status = %q, want failed", res.Status)
	}
	if res.TaskID != "" {
		t.Errorf("task id = %q, want empty", res.TaskID)
	}

	tasks, _ := env.tasks.List("", "")
	if len(tasks) != 0 {
		t.Errorf("assign to unknown agent created %d tasks", len(tasks))
	}
}

func TestAssignCompletes(t *testing.T) {
	env := setupSupervisor(t, false)
	spy := newSpyAgent("worker-a", 0, &models.Response{Success: true, Response: "pong"}, "")
	env.registry.Register(spy.worker)

	res := env.sup.Assign("worker-a", "ping", 5*time.Second, nil)
	if res.Status != models.TaskStatusPending {
		t.Fatalf("initial status = %q, want pending", res.Status)
	}
	if res.TaskID == "" {
		t.Fatal("assign should return a task id")
	}

	task := waitForTerminal(t, env.tasks, res.TaskID)
	if task.Status != models.TaskStatusCompleted {
		t.Errorf("final status = %q, want completed (error: %s)", task.Status, task.Error)
	}
	if task.Result != "pong" {
		t.Errorf("result = %q, want pong", task.Result)
	}
	if task.CompletedAt == nil {
		t.Error("completed task must have completed_at")
	}
}

func TestAssignProviderFailure(t *testing.T) {
	env := setupSupervisor(t, false)
	spy := newSpyAgent("worker-a", 0, &models.Response{Success: false, Error: "quota exceeded"}, "")
	env.registry.Register(spy.worker)

	res := env.sup.Assign("worker-a", "ping", 0, nil)
	task := waitForTerminal(t, env.tasks, res.TaskID)
	if task.Status != models.TaskStatusFailed {
		t.Errorf("status = %q, want failed", task.Status)
	}
	if task.Error != "quota exceeded" {
		t.Errorf("error = %q, want provider error", task.Error)
	}
}

func TestAssignTimeout(t *testing.T) {
	env := setupSupervisor(t, false)
	spy := newSpyAgent("worker-a", time.Second, &models.Response{Success: true}, "")
	env.registry.Register(spy.worker)

	res := env.sup.Assign("worker-a", "ping", 30*time.Millisecond, nil)
	task := waitForTerminal(t, env.tasks, res.TaskID)
	if task.Status != models.TaskStatusTimedOut {
		t.Errorf("status = %q, want timed_out", task.Status)
	}
	if !strings.Contains(task.Error, "timed out") {
		t.Errorf("error = %q, want timeout message", task.Error)
	}
}

func TestAssignPanicContained(t *testing.T) {
	env := setupSupervisor(t, true)
	spy := newSpyAgent("worker-a", 0, nil, "detached explosion")
	env.registry.Register(spy.worker)

	// Must not panic the caller.
	res := env.sup.Assign("worker-a", "ping", 0, nil)

	task := waitForTerminal(t, env.tasks, res.TaskID)
	if task.Status != models.TaskStatusFailed {
		t.Errorf("status = %q, want failed", task.Status)
	}
	if task.Error != maskedError {
		t.Errorf("error = %q, want masked", task.Error)
	}
}

func TestSendMessage(t *testing.T) {
	env := setupSupervisor(t, false)
	spy := newSpyAgent("worker-a", 0, &models.Response{Success: true}, "")
	env.registry.Register(spy.worker)

	msg, err := env.sup.SendMessage("worker-a", "status update", "", "")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.From != "supervisor" {
		t.Errorf("from = %q, want supervisor default", msg.From)
	}

	msgs, _ := env.inbox.GetMessages("worker-a", false, 0)
	if len(msgs) != 1 || msgs[0].Content != "status update" {
		t.Errorf("inbox = %+v, want the sent message", msgs)
	}
}

func TestSendMessageUnknownAgent(t *testing.T) {
	env := setupSupervisor(t, false)

	_, err := env.sup.SendMessage("ghost", "hello", "supervisor", "")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want not-found", err)
	}

	msgs, _ := env.inbox.GetMessages("ghost", false, 0)
	if len(msgs) != 0 {
		t.Errorf("message row created for unknown agent: %+v", msgs)
	}
}
