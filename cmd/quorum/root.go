package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quorum-ai/quorum/internal/config"
	"github.com/quorum-ai/quorum/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "quorum",
	Short: "AI consensus & agent orchestration MCP server",
	Long: `Quorum queries multiple local AI CLIs (gemini, codex, copilot),
combines their answers into consensus and council results, and
orchestrates worker agents through handoff, assignment, and messaging.

Run 'quorum serve' to expose everything as an MCP server over stdio,
or use the subcommands directly from the terminal.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default: ~/.config/quorum/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(consensusCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(inboxCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration from the --config path or the default
// locations.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// newLogger builds a logger at the configured level. CLI subcommands
// log to stderr so stdout stays clean for command output (and for the
// MCP transport in serve).
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// openStore opens and migrates the task database.
func openStore(cfg *config.Config) (*store.DB, error) {
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
