package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quorum-ai/quorum/pkg/models"
)

// registerOrchestrationTools adds the agent orchestration tools:
// handoff, assign, task queries, messaging, and management.
func (s *Server) registerOrchestrationTools() {
	s.mcp.AddTool(mcp.NewTool("agent_handoff",
		mcp.WithDescription("Synchronous handoff to a specific agent. Waits for the agent to complete and returns the result."),
		mcp.WithString("agent_name", mcp.Required(), mcp.Description("Name of the agent to hand off to (e.g. gemini-worker, codex-worker).")),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The prompt to send to the agent.")),
		mcp.WithNumber("timeout", mcp.Description("Timeout in seconds (default: 120).")),
		mcp.WithNumber("current_depth", mcp.Description("Current handoff chain depth for recursion prevention (default: 0).")),
	), s.handleAgentHandoff)

	s.mcp.AddTool(mcp.NewTool("agent_assign",
		mcp.WithDescription("Asynchronously assign a task to an agent. Returns immediately with a task ID; poll with check_task."),
		mcp.WithString("agent_name", mcp.Required(), mcp.Description("Name of the agent to assign the task to.")),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The task prompt.")),
		mcp.WithNumber("timeout", mcp.Description("Timeout in seconds (default: 120).")),
	), s.handleAgentAssign)

	s.mcp.AddTool(mcp.NewTool("check_task",
		mcp.WithDescription("Check the status of an async task by its ID. Returns current status, result, or error."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("The task ID to check.")),
	), s.handleCheckTask)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List orchestration tasks, optionally filtered by agent or status."),
		mcp.WithString("agent_name", mcp.Description("Filter by agent name.")),
		mcp.WithString("status", mcp.Description("Filter by status (pending, running, completed, failed, timed_out).")),
	), s.handleListTasks)

	s.mcp.AddTool(mcp.NewTool("send_agent_message",
		mcp.WithDescription("Send a message to an agent's inbox, used for passing context or instructions."),
		mcp.WithString("agent_name", mcp.Required(), mcp.Description("Target agent name.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Message content.")),
		mcp.WithString("from_agent", mcp.Description("Sender name (default: supervisor).")),
	), s.handleSendAgentMessage)

	s.mcp.AddTool(mcp.NewTool("read_agent_inbox",
		mcp.WithDescription("Read messages from an agent's inbox."),
		mcp.WithString("agent_name", mcp.Required(), mcp.Description("Agent name to read the inbox for.")),
		mcp.WithBoolean("unread_only", mcp.Description("Only show unread messages (default: false).")),
		mcp.WithBoolean("mark_read", mcp.Description("Mark returned messages as read (default: true).")),
	), s.handleReadAgentInbox)

	s.mcp.AddTool(mcp.NewTool("inbox_summary",
		mcp.WithDescription("Get a summary of an agent's inbox: total, unread count, oldest unread."),
		mcp.WithString("agent_name", mcp.Required(), mcp.Description("Agent name.")),
	), s.handleInboxSummary)

	s.mcp.AddTool(mcp.NewTool("clear_inbox",
		mcp.WithDescription("Delete all messages in an agent's inbox."),
		mcp.WithString("agent_name", mcp.Required(), mcp.Description("Agent name.")),
	), s.handleClearInbox)

	s.mcp.AddTool(mcp.NewTool("list_agents",
		mcp.WithDescription("List all registered agents with their capabilities and status."),
	), s.handleListAgents)

	s.mcp.AddTool(mcp.NewTool("cleanup_tasks",
		mcp.WithDescription("Clean up old completed, failed, and timed-out tasks from the database."),
		mcp.WithNumber("max_age_hours", mcp.Description("Delete terminal tasks older than this many hours (default: 24).")),
	), s.handleCleanupTasks)
}

func (s *Server) handleAgentHandoff(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentName, err := req.RequireString("agent_name")
	if err != nil {
		return nil, err
	}
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(req.GetFloat("timeout", 0)) * time.Second
	depth := int(req.GetFloat("current_depth", 0))

	orchCtx := models.NewOrchestrationContext("agent_handoff")
	orchCtx.CurrentDepth = depth

	result := s.deps.Supervisor.Handoff(ctx, agentName, prompt, timeout, orchCtx)
	if result.Success {
		return textResult(fmt.Sprintf(
			"## Handoff Result (%s)\n\n%s\n\n---\n_Duration: %dms_",
			result.AgentName, result.Response, result.Duration.Milliseconds())), nil
	}
	return errorResult(
		"## Handoff Failed (%s)\n\n**Error:** %s\n\n---\n_Duration: %dms_",
		result.AgentName, result.Error, result.Duration.Milliseconds()), nil
}

func (s *Server) handleAgentAssign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentName, err := req.RequireString("agent_name")
	if err != nil {
		return nil, err
	}
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(req.GetFloat("timeout", 0)) * time.Second

	result := s.deps.Supervisor.Assign(agentName, prompt, timeout, models.NewOrchestrationContext("agent_assign"))
	if result.TaskID == "" {
		return errorResult("## Assignment Failed\n\n**Error:** %s", result.Message), nil
	}
	return textResult(fmt.Sprintf(
		"## Task Assigned\n\n- **Task ID:** `%s`\n- **Agent:** %s\n- **Status:** %s\n- **Message:** %s\n\nUse `check_task(%q)` to check progress.",
		result.TaskID, result.AgentName, result.Status, result.Message, result.TaskID)), nil
}

func (s *Server) handleCheckTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := req.RequireString("task_id")
	if err != nil {
		return nil, err
	}

	task, err := s.deps.Tasks.Get(taskID)
	if err != nil {
		return errorResult("looking up task failed: %v", err), nil
	}
	if task == nil {
		return textResult(fmt.Sprintf("Task `%s` not found.", taskID)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Task Status: `%s`\n\n", task.ID)
	fmt.Fprintf(&b, "- **Agent:** %s\n", task.AgentName)
	fmt.Fprintf(&b, "- **Status:** %s\n", task.Status)
	fmt.Fprintf(&b, "- **Created:** %s\n", task.CreatedAt.Format(time.RFC3339))
	if task.CompletedAt != nil {
		fmt.Fprintf(&b, "- **Completed:** %s\n", task.CompletedAt.Format(time.RFC3339))
	}
	if task.Result != "" {
		fmt.Fprintf(&b, "\n### Result\n\n%s\n", task.Result)
	}
	if task.Error != "" {
		fmt.Fprintf(&b, "\n### Error\n\n%s\n", task.Error)
	}
	return textResult(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) handleListTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentName := req.GetString("agent_name", "")
	status := models.TaskStatus(req.GetString("status", ""))
	if status != "" && !status.Valid() {
		return errorResult("invalid status %q; valid values: pending, running, completed, failed, timed_out", status), nil
	}

	tasks, err := s.deps.Tasks.List(agentName, status)
	if err != nil {
		return errorResult("listing tasks failed: %v", err), nil
	}
	if len(tasks) == 0 {
		return textResult("No tasks found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Tasks (%d)\n\n", len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(&b, "- `%s` | **%s** | %s | %s\n",
			t.ID, t.AgentName, t.Status, t.CreatedAt.Format(time.RFC3339))
	}
	return textResult(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) handleSendAgentMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentName, err := req.RequireString("agent_name")
	if err != nil {
		return nil, err
	}
	content, err := req.RequireString("content")
	if err != nil {
		return nil, err
	}
	from := req.GetString("from_agent", "supervisor")

	msg, err := s.deps.Supervisor.SendMessage(agentName, content, from, "")
	if err != nil {
		return errorResult("## Send Failed\n\n**Error:** %v", err), nil
	}
	return textResult(fmt.Sprintf(
		"## Message Sent\n\n- **ID:** `%s`\n- **To:** %s\n- **From:** %s\n- **Time:** %s",
		msg.ID, msg.To, msg.From, msg.Timestamp.Format(time.RFC3339))), nil
}

func (s *Server) handleReadAgentInbox(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentName, err := req.RequireString("agent_name")
	if err != nil {
		return nil, err
	}
	unreadOnly := req.GetBool("unread_only", false)
	markRead := req.GetBool("mark_read", true)

	messages, err := s.deps.Inbox.GetMessages(agentName, unreadOnly, 0)
	if err != nil {
		return errorResult("reading inbox failed: %v", err), nil
	}
	if len(messages) == 0 {
		qualifier := ""
		if unreadOnly {
			qualifier = "unread "
		}
		return textResult(fmt.Sprintf("No %smessages for **%s**.", qualifier, agentName)), nil
	}

	if markRead {
		ids := make([]string, len(messages))
		for i, m := range messages {
			ids[i] = m.ID
		}
		if _, err := s.deps.Inbox.MarkRead(agentName, ids); err != nil {
			return errorResult("marking messages read failed: %v", err), nil
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Inbox: %s (%d messages)\n\n", agentName, len(messages))
	for _, m := range messages {
		content := m.Content
		if len(content) > 200 {
			content = content[:200]
		}
		fmt.Fprintf(&b, "- `%s` from **%s** (%s)\n  > %s\n",
			m.ID, m.From, m.Timestamp.Format(time.RFC3339), content)
	}
	return textResult(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) handleInboxSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentName, err := req.RequireString("agent_name")
	if err != nil {
		return nil, err
	}

	summary, err := s.deps.Inbox.Summary(agentName)
	if err != nil {
		return errorResult("inbox summary failed: %v", err), nil
	}

	oldest := "N/A"
	if summary.OldestUnread != nil {
		oldest = summary.OldestUnread.Format(time.RFC3339)
	}
	return textResult(fmt.Sprintf(
		"## Inbox Summary: %s\n\n- **Total messages:** %d\n- **Unread:** %d\n- **Oldest unread:** %s",
		summary.AgentName, summary.Total, summary.Unread, oldest)), nil
}

func (s *Server) handleClearInbox(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentName, err := req.RequireString("agent_name")
	if err != nil {
		return nil, err
	}

	count, err := s.deps.Inbox.Clear(agentName)
	if err != nil {
		return errorResult("clearing inbox failed: %v", err), nil
	}
	return textResult(fmt.Sprintf("Cleared %d message(s) for **%s**.", count, agentName)), nil
}

func (s *Server) handleListAgents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agents := s.deps.Registry.List()
	if len(agents) == 0 {
		return textResult("No agents registered."), nil
	}

	var b strings.Builder
	b.WriteString("## Registered Agents\n\n")
	for _, info := range agents {
		caps := make([]string, len(info.Capabilities))
		for i, c := range info.Capabilities {
			caps[i] = string(c)
		}
		fmt.Fprintf(&b, "- **%s** (%s) | Status: %s | Capabilities: %s\n",
			info.Name, info.Type, info.Status, strings.Join(caps, ", "))
	}
	return textResult(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) handleCleanupTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hours := req.GetFloat("max_age_hours", 24)
	if hours <= 0 {
		return errorResult("max_age_hours must be positive"), nil
	}

	deleted, err := s.deps.Tasks.Cleanup(time.Duration(hours * float64(time.Hour)))
	if err != nil {
		return errorResult("cleanup failed: %v", err), nil
	}
	return textResult(fmt.Sprintf("Cleaned up **%d** old task(s) (older than %gh).", deleted, hours)), nil
}
