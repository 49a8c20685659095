package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quorum-ai/quorum/internal/agent"
	"github.com/quorum-ai/quorum/internal/cache"
	"github.com/quorum-ai/quorum/internal/consensus"
	"github.com/quorum-ai/quorum/internal/janitor"
	"github.com/quorum-ai/quorum/internal/orchestrator"
	"github.com/quorum-ai/quorum/internal/provider"
	"github.com/quorum-ai/quorum/internal/server"
	"github.com/quorum-ai/quorum/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Start the quorum MCP server on stdin/stdout.

On startup any tasks left in a non-terminal state by a previous run are
marked failed, and a background janitor cleans up old terminal tasks on
the configured schedule.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// A previous process may have died mid-task; those rows would
	// otherwise look running forever.
	recovered, err := db.RecoverOrphans()
	if err != nil {
		return fmt.Errorf("recover orphaned tasks: %w", err)
	}
	if recovered > 0 {
		log.WithField("count", recovered).Warn("marked orphaned tasks as failed")
	}

	tasks := store.NewTaskStore(db)
	inbox := store.NewInbox(db, cfg.Inbox.MaxMessages)

	cacheStore, err := cache.New(cfg.Cache.Dir)
	if err != nil {
		return fmt.Errorf("open result cache: %w", err)
	}

	inv := provider.NewInvoker(&provider.ExecRunner{}, cfg.Providers, log)

	registry := agent.NewRegistry()
	registry.Register(agent.NewGeminiWorker(inv, cfg.Providers.Gemini, log))
	registry.Register(agent.NewCodexWorker(inv, cfg.Providers.Codex, log))
	registry.Register(agent.NewCopilotWorker(inv, cfg.Providers.Copilot, log))

	sup := orchestrator.NewSupervisor(registry, tasks, inbox, cfg.Handoff, cfg.Tasks.DefaultTimeout, log)
	engine := consensus.NewEngine(inv, cfg.Providers, cacheStore, log)

	jan, err := janitor.New(janitor.Config{
		Tasks:     tasks,
		Schedule:  cfg.Tasks.CleanupSchedule,
		Retention: cfg.Tasks.Retention,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jan.Start(ctx)
	defer jan.Stop()

	srv := server.New(server.Deps{
		Config:     cfg,
		Invoker:    inv,
		Engine:     engine,
		Supervisor: sup,
		Registry:   registry,
		Tasks:      tasks,
		Inbox:      inbox,
		Cache:      cacheStore,
		Logger:     log,
	})
	return srv.Serve()
}
