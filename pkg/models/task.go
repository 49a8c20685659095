package models

import "time"

// TaskStatus represents the lifecycle state of an asynchronous task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has been created but not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the task is executing.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusTimedOut indicates the task exceeded its timeout.
	TaskStatusTimedOut TaskStatus = "timed_out"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted,
		TaskStatusFailed, TaskStatusTimedOut:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a final state. Terminal tasks
// never transition again and carry either a result or an error.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusTimedOut:
		return true
	default:
		return false
	}
}

// Task represents one unit of asynchronous work assigned to an agent.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"task_id"`
	// AgentName is the target agent.
	AgentName string `json:"agent_name"`
	// Prompt is the work to perform.
	Prompt string `json:"prompt"`
	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`
	// Result is the output text, set only on completion.
	Result string `json:"result,omitempty"`
	// Error is the failure message, set only on failure or timeout.
	Error string `json:"error,omitempty"`
	// TimeoutSeconds bounds the task's execution.
	TimeoutSeconds int `json:"timeout_seconds"`
	// CreatedAt is when the task was created (UTC).
	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is when the task reached a terminal state, if it has.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// OrchContext is the serialized orchestration context, if any.
	OrchContext string `json:"orch_context,omitempty"`
}
