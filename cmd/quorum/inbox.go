package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quorum-ai/quorum/internal/store"
)

var (
	inboxUnread  bool
	inboxSummary bool
	inboxClear   bool
)

var inboxCmd = &cobra.Command{
	Use:   "inbox <agent-name>",
	Short: "Show an agent's message inbox",
	Long: `Print the messages waiting in an agent's inbox, newest first.

Examples:
  quorum inbox gemini-worker
  quorum inbox gemini-worker --unread
  quorum inbox gemini-worker --summary
  quorum inbox gemini-worker --clear`,
	Args: cobra.ExactArgs(1),
	RunE: runInbox,
}

func init() {
	inboxCmd.Flags().BoolVar(&inboxUnread, "unread", false, "Only show unread messages")
	inboxCmd.Flags().BoolVar(&inboxSummary, "summary", false, "Show counts instead of messages")
	inboxCmd.Flags().BoolVar(&inboxClear, "clear", false, "Delete all messages")
}

func runInbox(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	inbox := store.NewInbox(db, cfg.Inbox.MaxMessages)
	agentName := args[0]

	if inboxClear {
		count, err := inbox.Clear(agentName)
		if err != nil {
			return fmt.Errorf("clear inbox: %w", err)
		}
		fmt.Printf("Cleared %d message(s) for %s.\n", count, agentName)
		return nil
	}

	if inboxSummary {
		summary, err := inbox.Summary(agentName)
		if err != nil {
			return fmt.Errorf("inbox summary: %w", err)
		}
		fmt.Printf("Inbox for %s: %d total, %d unread\n", summary.AgentName, summary.Total, summary.Unread)
		if summary.OldestUnread != nil {
			fmt.Printf("Oldest unread: %s\n", summary.OldestUnread.Local().Format(time.RFC3339))
		}
		return nil
	}

	messages, err := inbox.GetMessages(agentName, inboxUnread, 0)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	if len(messages) == 0 {
		fmt.Printf("No messages for %s.\n", agentName)
		return nil
	}

	for _, m := range messages {
		marker := " "
		if !m.Read {
			marker = color.YellowString("*")
		}
		fmt.Printf("%s %s  from %-14s %s\n  %s\n",
			marker, m.ID, m.From, m.Timestamp.Local().Format(time.RFC3339), m.Content)
	}
	return nil
}
