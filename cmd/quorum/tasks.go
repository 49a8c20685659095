package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quorum-ai/quorum/internal/store"
	"github.com/quorum-ai/quorum/pkg/models"
)

var (
	tasksAgent  string
	tasksStatus string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks [task-id]",
	Short: "List orchestration tasks or show one task",
	Long: `Without arguments, list tasks newest first, optionally filtered
by agent or status. With a task id, show that task in full.

Examples:
  quorum tasks
  quorum tasks --agent gemini-worker --status running
  quorum tasks a1b2c3d4e5f6`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTasks,
}

func init() {
	tasksCmd.Flags().StringVar(&tasksAgent, "agent", "", "Filter by agent name")
	tasksCmd.Flags().StringVar(&tasksStatus, "status", "", "Filter by status (pending, running, completed, failed, timed_out)")
}

func runTasks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	tasks := store.NewTaskStore(db)

	if len(args) == 1 {
		return showTask(tasks, args[0])
	}

	status := models.TaskStatus(tasksStatus)
	if status != "" && !status.Valid() {
		return fmt.Errorf("invalid status %q", tasksStatus)
	}

	list, err := tasks.List(tasksAgent, status)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	for _, t := range list {
		fmt.Printf("%s  %-14s %-10s %s\n",
			t.ID, t.AgentName, colorStatus(t.Status), t.CreatedAt.Local().Format(time.RFC3339))
	}
	return nil
}

func showTask(tasks *store.TaskStore, id string) error {
	task, err := tasks.Get(id)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return fmt.Errorf("task %q not found", id)
	}

	fmt.Printf("Task:    %s\n", task.ID)
	fmt.Printf("Agent:   %s\n", task.AgentName)
	fmt.Printf("Status:  %s\n", colorStatus(task.Status))
	fmt.Printf("Created: %s\n", task.CreatedAt.Local().Format(time.RFC3339))
	if task.CompletedAt != nil {
		fmt.Printf("Done:    %s\n", task.CompletedAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("Prompt:  %s\n", task.Prompt)
	if task.Result != "" {
		fmt.Printf("\n%s\n", task.Result)
	}
	if task.Error != "" {
		fmt.Printf("\n%s %s\n", color.RedString("Error:"), task.Error)
	}
	return nil
}

func colorStatus(s models.TaskStatus) string {
	switch s {
	case models.TaskStatusCompleted:
		return color.GreenString(string(s))
	case models.TaskStatusFailed, models.TaskStatusTimedOut:
		return color.RedString(string(s))
	case models.TaskStatusRunning:
		return color.YellowString(string(s))
	default:
		return string(s)
	}
}
