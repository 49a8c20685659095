package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quorum-ai/quorum/internal/cache"
	"github.com/quorum-ai/quorum/internal/consensus"
	"github.com/quorum-ai/quorum/internal/provider"
)

var (
	consensusModel    string
	consensusSynth    bool
	consensusCouncil  bool
	consensusChairman string
	consensusNoCache  bool
)

var consensusCmd = &cobra.Command{
	Use:   "consensus <prompt...>",
	Short: "Ask multiple providers the same question",
	Long: `Query gemini and codex in parallel and print both answers.

With --synthesis the answers are additionally synthesized into a
combined recommendation. With --council all three providers answer,
peer-review each other, and a chairman produces the final synthesis.

Examples:
  quorum consensus "which serialization format should we pick?"
  quorum consensus --synthesis "which serialization format should we pick?"
  quorum consensus --council --chairman codex "design question here"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConsensus,
}

func init() {
	consensusCmd.Flags().StringVarP(&consensusModel, "model", "m", "", "Gemini model to use")
	consensusCmd.Flags().BoolVar(&consensusSynth, "synthesis", false, "Synthesize the answers into a recommendation")
	consensusCmd.Flags().BoolVar(&consensusCouncil, "council", false, "Run the full 3-stage council pipeline")
	consensusCmd.Flags().StringVar(&consensusChairman, "chairman", "gemini", "Chairman model for the council synthesis")
	consensusCmd.Flags().BoolVar(&consensusNoCache, "no-cache", false, "Skip the result cache")
}

func runConsensus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	prompt := strings.Join(args, " ")

	cacheStore, err := cache.New(cfg.Cache.Dir)
	if err != nil {
		return fmt.Errorf("open result cache: %w", err)
	}

	inv := provider.NewInvoker(&provider.ExecRunner{}, cfg.Providers, log)
	engine := consensus.NewEngine(inv, cfg.Providers, cacheStore, log)
	useCache := !consensusNoCache
	ctx := cmd.Context()

	switch {
	case consensusCouncil:
		result, cached, err := engine.Council(ctx, prompt, consensusModel, consensusChairman, useCache)
		if err != nil {
			return err
		}
		printResult(result.FormatMarkdown(), cached)
	case consensusSynth:
		result, cached, err := engine.ConsensusWithSynthesis(ctx, prompt, consensusModel, useCache)
		if err != nil {
			return err
		}
		printResult(result.FormatMarkdown(), cached)
	default:
		result, cached, err := engine.Consensus(ctx, prompt, consensusModel, useCache)
		if err != nil {
			return err
		}
		printResult(result.FormatMarkdown(), cached)
	}
	return nil
}

func printResult(markdown string, cached bool) {
	if cached {
		fmt.Println("[CACHED]")
		fmt.Println()
	}
	fmt.Println(markdown)
}
