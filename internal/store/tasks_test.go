package store

import (
	"testing"
	"time"

	"github.com/quorum-ai/quorum/pkg/models"
)

func setupTaskStore(t *testing.T) *TaskStore {
	t.Helper()
	return NewTaskStore(setupTestDB(t))
}

func TestTaskCreateGetRoundTrip(t *testing.T) {
	s := setupTaskStore(t)

	orchCtx := models.NewOrchestrationContext("agent_assign")
	created, err := s.Create("worker-a", "ping", orchCtx, 5*time.Second)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != models.TaskStatusPending {
		t.Errorf("status = %q, want pending", created.Status)
	}
	if created.TimeoutSeconds != 5 {
		t.Errorf("timeout = %d, want 5", created.TimeoutSeconds)
	}

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for existing task")
	}
	if got.ID != created.ID || got.AgentName != "worker-a" || got.Prompt != "ping" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Status != models.TaskStatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if got.CompletedAt != nil {
		t.Error("completed_at should be nil for pending task")
	}

	decoded, err := models.DecodeOrchestrationContext(got.OrchContext)
	if err != nil {
		t.Fatalf("decode context: %v", err)
	}
	if decoded.RequestID != orchCtx.RequestID {
		t.Errorf("context request id = %q, want %q", decoded.RequestID, orchCtx.RequestID)
	}
}

func TestTaskGetUnknown(t *testing.T) {
	s := setupTaskStore(t)
	task, err := s.Get("nonexistent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if task != nil {
		t.Errorf("Get(nonexistent) = %+v, want nil", task)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := setupTaskStore(t)

	task, err := s.Create("worker-a", "ping", nil, 5*time.Second)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Pending tasks show up in a status-filtered list.
	pending, err := s.List("", models.TaskStatusPending)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	found := false
	for _, p := range pending {
		if p.ID == task.ID {
			found = true
		}
	}
	if !found {
		t.Error("pending list does not include the new task")
	}

	running, err := s.UpdateStatus(task.ID, models.TaskStatusRunning, "", "")
	if err != nil {
		t.Fatalf("UpdateStatus(running) failed: %v", err)
	}
	if running.Status != models.TaskStatusRunning {
		t.Errorf("status = %q, want running", running.Status)
	}
	if running.CompletedAt != nil {
		t.Error("running task must not have completed_at")
	}

	done, err := s.UpdateStatus(task.ID, models.TaskStatusCompleted, "pong", "")
	if err != nil {
		t.Fatalf("UpdateStatus(completed) failed: %v", err)
	}
	if done.Status != models.TaskStatusCompleted {
		t.Errorf("status = %q, want completed", done.Status)
	}
	if done.Result != "pong" {
		t.Errorf("result = %q, want pong", done.Result)
	}
	if done.Error != "" {
		t.Errorf("error = %q, want empty", done.Error)
	}
	if done.CompletedAt == nil {
		t.Error("completed task must have completed_at")
	}
}

func TestTaskUpdateStatusUnknown(t *testing.T) {
	s := setupTaskStore(t)
	task, err := s.UpdateStatus("nonexistent", models.TaskStatusCompleted, "x", "")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if task != nil {
		t.Errorf("UpdateStatus(nonexistent) = %+v, want nil", task)
	}
}

func TestTaskFailedCarriesError(t *testing.T) {
	s := setupTaskStore(t)
	task, _ := s.Create("worker-a", "ping", nil, time.Second)

	failed, err := s.UpdateStatus(task.ID, models.TaskStatusFailed, "", "boom")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if failed.Error != "boom" {
		t.Errorf("error = %q, want boom", failed.Error)
	}
	if failed.Result != "" {
		t.Errorf("result = %q, want empty (result and error are exclusive)", failed.Result)
	}
	if failed.CompletedAt == nil {
		t.Error("failed task must have completed_at")
	}
}

func TestTaskListFilters(t *testing.T) {
	s := setupTaskStore(t)

	a1, _ := s.Create("worker-a", "p1", nil, time.Second)
	s.Create("worker-b", "p2", nil, time.Second)
	a3, _ := s.Create("worker-a", "p3", nil, time.Second)
	s.UpdateStatus(a3.ID, models.TaskStatusCompleted, "r", "")

	all, err := s.List("", "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered list = %d tasks, want 3", len(all))
	}
	// Newest first.
	if all[0].ID != a3.ID {
		t.Errorf("first task = %s, want newest %s", all[0].ID, a3.ID)
	}

	byAgent, err := s.List("worker-a", "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(byAgent) != 2 {
		t.Errorf("worker-a list = %d tasks, want 2", len(byAgent))
	}

	byBoth, err := s.List("worker-a", models.TaskStatusPending)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(byBoth) != 1 || byBoth[0].ID != a1.ID {
		t.Errorf("worker-a pending list = %+v, want only %s", byBoth, a1.ID)
	}
}

func TestTaskCleanup(t *testing.T) {
	s := setupTaskStore(t)

	old, _ := s.Create("worker-a", "old", nil, time.Second)
	s.UpdateStatus(old.ID, models.TaskStatusCompleted, "r", "")
	// Backdate the old task past the retention cutoff.
	if _, err := s.db.Exec("UPDATE tasks SET created_at = ? WHERE task_id = ?",
		formatTime(time.Now().Add(-48*time.Hour)), old.ID); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	recent, _ := s.Create("worker-a", "recent", nil, time.Second)
	s.UpdateStatus(recent.ID, models.TaskStatusCompleted, "r", "")

	// Old but non-terminal: must survive cleanup.
	stuck, _ := s.Create("worker-a", "stuck", nil, time.Second)
	if _, err := s.db.Exec("UPDATE tasks SET created_at = ? WHERE task_id = ?",
		formatTime(time.Now().Add(-48*time.Hour)), stuck.ID); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	count, err := s.Cleanup(24 * time.Hour)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if count != 1 {
		t.Errorf("cleanup deleted %d tasks, want 1", count)
	}

	if task, _ := s.Get(old.ID); task != nil {
		t.Error("old terminal task should be deleted")
	}
	if task, _ := s.Get(recent.ID); task == nil {
		t.Error("recent terminal task should survive")
	}
	if task, _ := s.Get(stuck.ID); task == nil {
		t.Error("non-terminal task must never be cleaned up")
	}
}
