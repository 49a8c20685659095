package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quorum-ai/quorum/pkg/models"
)

// tempDBPath returns a path to a temp database file.
func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// setupTestDB creates a new temporary database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(tempDBPath(t))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestOpen(t *testing.T) {
	path := tempDBPath(t)
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("database file does not exist at %s", path)
	}
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()
}

func TestMigrateIdempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	// Tables exist and are usable.
	if _, err := db.Exec("SELECT COUNT(*) FROM tasks"); err != nil {
		t.Errorf("tasks table missing: %v", err)
	}
	if _, err := db.Exec("SELECT COUNT(*) FROM messages"); err != nil {
		t.Errorf("messages table missing: %v", err)
	}
}

func TestRecoverOrphans(t *testing.T) {
	db := setupTestDB(t)
	tasks := NewTaskStore(db)

	pending, err := tasks.Create("worker-a", "p1", nil, time.Minute)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	running, err := tasks.Create("worker-a", "p2", nil, time.Minute)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.UpdateStatus(running.ID, models.TaskStatusRunning, "", ""); err != nil {
		t.Fatalf("update: %v", err)
	}
	completed, err := tasks.Create("worker-a", "p3", nil, time.Minute)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.UpdateStatus(completed.ID, models.TaskStatusCompleted, "done", ""); err != nil {
		t.Fatalf("update: %v", err)
	}

	count, err := db.RecoverOrphans()
	if err != nil {
		t.Fatalf("RecoverOrphans failed: %v", err)
	}
	if count != 2 {
		t.Errorf("recovered %d tasks, want 2", count)
	}

	for _, id := range []string{pending.ID, running.ID} {
		task, err := tasks.Get(id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if task.Status != models.TaskStatusFailed {
			t.Errorf("task %s status = %q, want failed", id, task.Status)
		}
		if task.Error != "server restarted" {
			t.Errorf("task %s error = %q, want server restarted", id, task.Error)
		}
		if task.CompletedAt == nil {
			t.Errorf("task %s completed_at not stamped", id)
		}
	}

	// Completed task untouched.
	task, err := tasks.Get(completed.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task.Status != models.TaskStatusCompleted || task.Result != "done" {
		t.Errorf("completed task changed: status=%q result=%q", task.Status, task.Result)
	}
}

func TestRecoverOrphansIdempotent(t *testing.T) {
	db := setupTestDB(t)
	tasks := NewTaskStore(db)

	if _, err := tasks.Create("worker-a", "p1", nil, time.Minute); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := db.RecoverOrphans()
	if err != nil {
		t.Fatalf("first recovery failed: %v", err)
	}
	if first != 1 {
		t.Errorf("first recovery rewrote %d rows, want 1", first)
	}

	second, err := db.RecoverOrphans()
	if err != nil {
		t.Fatalf("second recovery failed: %v", err)
	}
	if second != 0 {
		t.Errorf("second recovery rewrote %d rows, want 0", second)
	}
}
