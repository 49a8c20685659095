package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quorum-ai/quorum/internal/provider"
)

var askModel string

var askCmd = &cobra.Command{
	Use:   "ask <provider> <prompt...>",
	Short: "Ask a single AI provider a question",
	Long: `Send a prompt to one provider CLI and print the answer.

Providers: gemini, codex, copilot.

Examples:
  quorum ask gemini "explain goroutines"
  quorum ask gemini -m gemini-2.0-flash "explain goroutines"
  quorum ask codex "review this function for bugs"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "Model to use (gemini only)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	name := args[0]
	prompt := strings.Join(args[1:], " ")

	inv := provider.NewInvoker(&provider.ExecRunner{}, cfg.Providers, log)

	var call provider.Invocation
	switch name {
	case provider.ProviderGemini:
		call = provider.GeminiInvocation(cfg.Providers.Gemini, prompt, askModel, 0)
	case provider.ProviderCodex:
		call = provider.CodexInvocation(cfg.Providers.Codex, prompt, 0)
	case provider.ProviderCopilot:
		call = provider.CopilotInvocation(cfg.Providers.Copilot, prompt, 0)
	default:
		return fmt.Errorf("unknown provider %q (want gemini, codex, or copilot)", name)
	}

	resp := inv.Invoke(cmd.Context(), call)
	if !resp.Success {
		return fmt.Errorf("%s: %s", color.RedString("%s failed", name), resp.Error)
	}
	fmt.Println(resp.Response)
	return nil
}
