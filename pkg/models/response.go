// Package models defines the shared data types for the quorum server:
// provider responses, tasks, messages, and orchestration results.
package models

import "time"

// Response is the uniform result of one provider invocation.
type Response struct {
	// Provider identifies which provider produced this response.
	Provider string `json:"provider"`
	// Response is the captured output text.
	Response string `json:"response"`
	// Success indicates whether the invocation succeeded.
	Success bool `json:"success"`
	// Error contains the failure message when Success is false.
	Error string `json:"error,omitempty"`
}

// HandoffResult is the outcome of a synchronous agent handoff.
type HandoffResult struct {
	// AgentName is the agent that handled the request.
	AgentName string `json:"agent_name"`
	// Prompt is the prompt that was sent.
	Prompt string `json:"prompt"`
	// Response is the agent's response text.
	Response string `json:"response,omitempty"`
	// Success indicates whether the handoff succeeded.
	Success bool `json:"success"`
	// Error contains the failure message when Success is false.
	Error string `json:"error,omitempty"`
	// Duration is the wall-clock execution time, measured on
	// success and failure paths alike.
	Duration time.Duration `json:"duration_ms"`
}

// AssignResult is the immediate outcome of an asynchronous assignment.
// The task result itself is retrieved later through the task store.
type AssignResult struct {
	// TaskID is the assigned task's id, empty if no task was created.
	TaskID string `json:"task_id"`
	// AgentName is the agent the task was assigned to.
	AgentName string `json:"agent_name"`
	// Status is the initial task status.
	Status TaskStatus `json:"status"`
	// Message is a human-readable status line.
	Message string `json:"message"`
}
