package provider

import (
	"time"

	"github.com/quorum-ai/quorum/internal/config"
)

// Provider identifiers.
const (
	ProviderGemini  = "gemini"
	ProviderCodex   = "codex"
	ProviderCopilot = "copilot"
)

// GeminiInvocation builds the subprocess invocation for the Gemini CLI.
// An empty model falls back to the configured default, then to the
// CLI's own default.
func GeminiInvocation(cfg config.GeminiConfig, prompt, model string, timeout time.Duration) Invocation {
	argv := []string{"gemini", "-p", prompt, "-o", "text"}
	if model == "" {
		model = cfg.DefaultModel
	}
	if model != "" {
		argv = append(argv, "-m", model)
	}
	return Invocation{
		Provider: ProviderGemini,
		Argv:     argv,
		WorkDir:  cfg.WorkDir,
		Timeout:  timeout,
	}
}

// CodexInvocation builds the subprocess invocation for the Codex CLI.
func CodexInvocation(cfg config.CodexConfig, prompt string, timeout time.Duration) Invocation {
	return Invocation{
		Provider: ProviderCodex,
		Argv:     []string{"codex", "exec", prompt},
		WorkDir:  cfg.WorkDir,
		Timeout:  timeout,
	}
}

// CopilotInvocation builds the subprocess invocation for the Copilot CLI.
// Shell and write tools are denied so the provider answers read-only.
func CopilotInvocation(cfg config.CopilotConfig, prompt string, timeout time.Duration) Invocation {
	return Invocation{
		Provider: ProviderCopilot,
		Argv: []string{
			"copilot", "-p", prompt,
			"--deny-tool", "shell",
			"--deny-tool", "write",
		},
		WorkDir: cfg.WorkDir,
		Timeout: timeout,
	}
}
