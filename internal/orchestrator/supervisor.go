// Package orchestrator coordinates agent execution through three
// interaction patterns: synchronous handoff, asynchronous assignment,
// and asynchronous mailbox messaging.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quorum-ai/quorum/internal/agent"
	"github.com/quorum-ai/quorum/internal/config"
	"github.com/quorum-ai/quorum/internal/store"
	"github.com/quorum-ai/quorum/pkg/models"
)

// maskedError replaces unexpected internal error text in caller-visible
// results when masking is enabled. Full detail stays in the server log.
const maskedError = "an internal error occurred"

// Supervisor is stateless coordination logic over the registry, task
// store, and inbox. All durable state lives in those components.
type Supervisor struct {
	registry       *agent.Registry
	tasks          *store.TaskStore
	inbox          *store.Inbox
	maxDepth       int
	maskErrors     bool
	defaultTimeout time.Duration
	log            *logrus.Logger
}

// NewSupervisor creates a Supervisor over the given components.
func NewSupervisor(registry *agent.Registry, tasks *store.TaskStore, inbox *store.Inbox, cfg config.HandoffConfig, defaultTimeout time.Duration, log *logrus.Logger) *Supervisor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Supervisor{
		registry:       registry,
		tasks:          tasks,
		inbox:          inbox,
		maxDepth:       cfg.MaxDepth,
		maskErrors:     cfg.MaskErrors,
		defaultTimeout: defaultTimeout,
		log:            log,
	}
}

// execOutcome carries the result of one agent execution, or the panic
// that ended it.
type execOutcome struct {
	resp     *models.Response
	panicked error
}

// Handoff delegates a prompt to an agent synchronously and waits for
// the result, bounded by the timeout. Wall-clock duration is recorded
// on every path, including failures.
func (s *Supervisor) Handoff(ctx context.Context, agentName, prompt string, timeout time.Duration, orchCtx *models.OrchestrationContext) *models.HandoffResult {
	if orchCtx == nil {
		orchCtx = models.NewOrchestrationContext("agent_handoff")
	}

	if orchCtx.CurrentDepth > s.maxDepth {
		return &models.HandoffResult{
			AgentName: agentName,
			Prompt:    prompt,
			Success:   false,
			Error:     fmt.Sprintf("max handoff depth (%d) exceeded", s.maxDepth),
		}
	}

	a := s.registry.Get(agentName)
	if a == nil {
		return &models.HandoffResult{
			AgentName: agentName,
			Prompt:    prompt,
			Success:   false,
			Error:     fmt.Sprintf("agent %q not found", agentName),
		}
	}

	if timeout <= 0 {
		timeout = s.defaultTimeout
	}

	start := time.Now()
	resp, err := s.execute(ctx, a, prompt, orchCtx, timeout)
	elapsed := time.Since(start)

	switch {
	case err == context.DeadlineExceeded:
		return &models.HandoffResult{
			AgentName: agentName,
			Prompt:    prompt,
			Success:   false,
			Error:     fmt.Sprintf("handoff timed out after %s", timeout),
			Duration:  elapsed,
		}
	case err != nil:
		s.log.WithFields(logrus.Fields{
			"agent":      agentName,
			"request_id": orchCtx.RequestID,
		}).Errorf("handoff failed: %v", err)
		return &models.HandoffResult{
			AgentName: agentName,
			Prompt:    prompt,
			Success:   false,
			Error:     s.maskError(err.Error()),
			Duration:  elapsed,
		}
	case resp.Success:
		return &models.HandoffResult{
			AgentName: agentName,
			Prompt:    prompt,
			Response:  resp.Response,
			Success:   true,
			Duration:  elapsed,
		}
	default:
		errText := resp.Error
		if errText == "" {
			errText = "agent returned failure"
		}
		return &models.HandoffResult{
			AgentName: agentName,
			Prompt:    prompt,
			Success:   false,
			Error:     errText,
			Duration:  elapsed,
		}
	}
}

// Assign creates a task for an agent and launches execution detached.
// The caller receives the task id immediately; the outcome is only
// observable through later status queries. Failures inside the detached
// execution never propagate.
func (s *Supervisor) Assign(agentName, prompt string, timeout time.Duration, orchCtx *models.OrchestrationContext) *models.AssignResult {
	a := s.registry.Get(agentName)
	if a == nil {
		return &models.AssignResult{
			AgentName: agentName,
			Status:    models.TaskStatusFailed,
			Message:   fmt.Sprintf("agent %q not found", agentName),
		}
	}

	if orchCtx == nil {
		orchCtx = models.NewOrchestrationContext("agent_assign")
	}
	if timeout <= 0 {
		timeout = s.defaultTimeout
	}

	task, err := s.tasks.Create(agentName, prompt, orchCtx, timeout)
	if err != nil {
		s.log.WithField("agent", agentName).Errorf("create task failed: %v", err)
		return &models.AssignResult{
			AgentName: agentName,
			Status:    models.TaskStatusFailed,
			Message:   s.maskError(err.Error()),
		}
	}

	go s.runTask(task.ID, a, prompt, orchCtx, timeout)

	return &models.AssignResult{
		TaskID:    task.ID,
		AgentName: agentName,
		Status:    models.TaskStatusPending,
		Message:   fmt.Sprintf("task %s assigned to %s", task.ID, agentName),
	}
}

// SendMessage delivers a message to an agent's inbox. The agent must be
// registered; the message itself is durable and read later.
func (s *Supervisor) SendMessage(agentName, content, from, metadata string) (*models.Message, error) {
	if from == "" {
		from = "supervisor"
	}
	if a := s.registry.Get(agentName); a == nil {
		return nil, fmt.Errorf("agent %q not found", agentName)
	}
	return s.inbox.Send(agentName, content, from, metadata)
}

// runTask is the detached execution behind Assign. Every failure mode,
// including a panic, is contained here and recorded via the task store.
func (s *Supervisor) runTask(taskID string, a agent.Agent, prompt string, orchCtx *models.OrchestrationContext, timeout time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("task_id", taskID).Errorf("task panicked: %v", r)
			s.tasks.UpdateStatus(taskID, models.TaskStatusFailed, "", s.maskError(fmt.Sprintf("unexpected error: %v", r)))
		}
	}()

	if _, err := s.tasks.UpdateStatus(taskID, models.TaskStatusRunning, "", ""); err != nil {
		s.log.WithField("task_id", taskID).Errorf("mark running failed: %v", err)
		return
	}

	// The parent request has already returned; the detached run gets
	// its own lifetime bounded only by the task timeout.
	resp, err := s.execute(context.Background(), a, prompt, orchCtx, timeout)

	switch {
	case err == context.DeadlineExceeded:
		s.tasks.UpdateStatus(taskID, models.TaskStatusTimedOut, "",
			fmt.Sprintf("task timed out after %s", timeout))
	case err != nil:
		s.log.WithField("task_id", taskID).Errorf("task failed: %v", err)
		s.tasks.UpdateStatus(taskID, models.TaskStatusFailed, "", s.maskError(err.Error()))
	case resp.Success:
		s.tasks.UpdateStatus(taskID, models.TaskStatusCompleted, resp.Response, "")
	default:
		errText := resp.Error
		if errText == "" {
			errText = "agent returned failure"
		}
		s.tasks.UpdateStatus(taskID, models.TaskStatusFailed, "", errText)
	}
}

// execute runs the agent bounded by the timeout. It returns
// context.DeadlineExceeded when the bound is hit; the context handed to
// the agent is canceled at that point, which kills the underlying
// subprocess. A panic in the agent is returned as an error.
func (s *Supervisor) execute(ctx context.Context, a agent.Agent, prompt string, orchCtx *models.OrchestrationContext, timeout time.Duration) (*models.Response, error) {
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan execOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- execOutcome{panicked: fmt.Errorf("unexpected error: %v", r)}
			}
		}()
		ch <- execOutcome{resp: a.Execute(execCtx, prompt, orchCtx)}
	}()

	select {
	case out := <-ch:
		if out.panicked != nil {
			return nil, out.panicked
		}
		return out.resp, nil
	case <-execCtx.Done():
		return nil, context.DeadlineExceeded
	}
}

// maskError hides internal error detail from callers when configured.
func (s *Supervisor) maskError(msg string) string {
	if s.maskErrors {
		return maskedError
	}
	return msg
}
