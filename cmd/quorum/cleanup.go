package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quorum-ai/quorum/internal/store"
)

var cleanupHours int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old completed, failed, and timed-out tasks",
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupHours, "hours", 0, "Delete terminal tasks older than this many hours (default: configured retention)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	retention := cfg.Tasks.Retention
	if cleanupHours > 0 {
		retention = time.Duration(cleanupHours) * time.Hour
	}

	deleted, err := store.NewTaskStore(db).Cleanup(retention)
	if err != nil {
		return fmt.Errorf("cleanup tasks: %w", err)
	}
	fmt.Printf("Cleaned up %d old task(s) (older than %s).\n", deleted, retention)
	return nil
}
