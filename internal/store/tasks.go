package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/quorum-ai/quorum/pkg/models"
)

// TaskStore manages the durable lifecycle of asynchronous agent tasks.
// It owns the tasks table exclusively; no other component mutates rows.
type TaskStore struct {
	db *DB
}

// NewTaskStore creates a TaskStore on the given database.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// Create inserts a new PENDING task and returns it.
func (s *TaskStore) Create(agentName, prompt string, orchCtx *models.OrchestrationContext, timeout time.Duration) (*models.Task, error) {
	task := &models.Task{
		ID:             models.NewID(),
		AgentName:      agentName,
		Prompt:         prompt,
		Status:         models.TaskStatusPending,
		TimeoutSeconds: int(timeout.Seconds()),
		CreatedAt:      time.Now().UTC(),
	}
	if orchCtx != nil {
		encoded, err := orchCtx.Encode()
		if err != nil {
			return nil, fmt.Errorf("encode orchestration context: %w", err)
		}
		task.OrchContext = encoded
	}

	_, err := s.db.Exec(
		`INSERT INTO tasks (task_id, agent_name, prompt, status, timeout_seconds, created_at, orch_context)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.AgentName, task.Prompt, string(task.Status),
		task.TimeoutSeconds, formatTime(task.CreatedAt), nullableString(task.OrchContext),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// UpdateStatus transitions a task to the given status. Terminal
// statuses stamp the completion time. Returns the updated task, or nil
// if the id is unknown.
func (s *TaskStore) UpdateStatus(taskID string, status models.TaskStatus, result, errText string) (*models.Task, error) {
	var completedAt any
	if status.Terminal() {
		completedAt = formatTime(time.Now())
	}

	res, err := s.db.Exec(
		"UPDATE tasks SET status = ?, result = ?, error = ?, completed_at = ? WHERE task_id = ?",
		string(status), nullableString(result), nullableString(errText), completedAt, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", taskID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.Get(taskID)
}

// Get returns the task with the given id, or nil if absent.
func (s *TaskStore) Get(taskID string) (*models.Task, error) {
	row := s.db.QueryRow(
		`SELECT task_id, agent_name, prompt, status, result, error, timeout_seconds, created_at, completed_at, orch_context
		 FROM tasks WHERE task_id = ?`, taskID)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", taskID, err)
	}
	return task, nil
}

// List returns tasks newest-first, optionally filtered by agent name
// and status. Empty filters match everything.
func (s *TaskStore) List(agentName string, status models.TaskStatus) ([]*models.Task, error) {
	query := `SELECT task_id, agent_name, prompt, status, result, error, timeout_seconds, created_at, completed_at, orch_context
		 FROM tasks WHERE 1=1`
	var args []any
	if agentName != "" {
		query += " AND agent_name = ?"
		args = append(args, agentName)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Cleanup deletes terminal-state tasks older than maxAge. Non-terminal
// tasks are never deleted. Returns the number of rows removed.
func (s *TaskStore) Cleanup(maxAge time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-maxAge))
	res, err := s.db.Exec(
		"DELETE FROM tasks WHERE created_at < ? AND status IN (?, ?, ?)",
		cutoff,
		string(models.TaskStatusCompleted),
		string(models.TaskStatusFailed),
		string(models.TaskStatusTimedOut),
	)
	if err != nil {
		return 0, fmt.Errorf("cleanup tasks: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row.
func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task        models.Task
		status      string
		result      sql.NullString
		errText     sql.NullString
		createdAt   string
		completedAt sql.NullString
		orchContext sql.NullString
	)
	err := row.Scan(&task.ID, &task.AgentName, &task.Prompt, &status,
		&result, &errText, &task.TimeoutSeconds, &createdAt, &completedAt, &orchContext)
	if err != nil {
		return nil, err
	}

	task.Status = models.TaskStatus(status)
	task.Result = result.String
	task.Error = errText.String
	task.OrchContext = orchContext.String
	task.CompletedAt = parseNullableTime(completedAt)

	created, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	task.CreatedAt = created
	return &task, nil
}

// nullableString maps "" to NULL for storage.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
