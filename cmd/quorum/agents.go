package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quorum-ai/quorum/internal/agent"
	"github.com/quorum-ai/quorum/internal/provider"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the worker agents and their capabilities",
	RunE:  runAgents,
}

func runAgents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	// The same workers serve builds; listing them here shows the
	// names and capabilities available for handoff and assignment.
	inv := provider.NewInvoker(&provider.ExecRunner{}, cfg.Providers, log)
	registry := agent.NewRegistry()
	registry.Register(agent.NewGeminiWorker(inv, cfg.Providers.Gemini, log))
	registry.Register(agent.NewCodexWorker(inv, cfg.Providers.Codex, log))
	registry.Register(agent.NewCopilotWorker(inv, cfg.Providers.Copilot, log))

	for _, info := range registry.List() {
		caps := make([]string, len(info.Capabilities))
		for i, c := range info.Capabilities {
			caps[i] = string(c)
		}
		fmt.Printf("%-16s %-8s %s\n", info.Name, info.Type, strings.Join(caps, ", "))
	}
	return nil
}
