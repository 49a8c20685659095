package provider

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quorum-ai/quorum/internal/config"
	"github.com/quorum-ai/quorum/pkg/models"
)

// backoffCap bounds the computed retry delay.
const backoffCap = 30 * time.Second

// emptyOutput is returned when a provider exits cleanly with no stdout
// and no diagnostic output.
const emptyOutput = "(empty)"

// Invocation describes one provider subprocess to execute.
type Invocation struct {
	// Provider is the provider identifier used in results and logs.
	Provider string
	// Argv is the full argument vector; Argv[0] is the executable.
	Argv []string
	// WorkDir is the subprocess working directory, if any.
	WorkDir string
	// Timeout overrides the configured provider timeout when positive.
	Timeout time.Duration
}

// Invoker runs provider subprocesses with timeout, exit-code checking,
// and a retry/backoff policy for transient failures.
type Invoker struct {
	runner CommandRunner
	cfg    config.ProvidersConfig
	log    *logrus.Logger
}

// NewInvoker creates an Invoker using the given runner and settings.
func NewInvoker(runner CommandRunner, cfg config.ProvidersConfig, log *logrus.Logger) *Invoker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Invoker{runner: runner, cfg: cfg, log: log}
}

// Invoke executes the provider subprocess and returns a uniform response.
// Transient errors are retried up to the configured attempt count with
// exponential backoff and jitter; fatal errors surface immediately. No
// error ever propagates out of Invoke: every outcome, including a panic
// in the runner, becomes a failure response.
func (inv *Invoker) Invoke(ctx context.Context, call Invocation) (resp *models.Response) {
	defer func() {
		if r := recover(); r != nil {
			inv.log.WithField("provider", call.Provider).Errorf("unexpected error invoking provider: %v", r)
			resp = &models.Response{
				Provider: call.Provider,
				Success:  false,
				Error:    fmt.Sprintf("unexpected error: %v", r),
			}
		}
	}()

	timeout := call.Timeout
	if timeout <= 0 {
		timeout = inv.cfg.Timeout
	}

	var lastErr error
	for attempt := 0; attempt < inv.cfg.MaxRetries; attempt++ {
		res, err := inv.runOnce(ctx, call, timeout)
		if err == nil {
			return res
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			inv.log.WithField("provider", call.Provider).Warnf("fatal error: %v", fatal)
			return &models.Response{
				Provider: call.Provider,
				Success:  false,
				Error:    fatal.Error(),
			}
		}

		lastErr = err
		if attempt == inv.cfg.MaxRetries-1 || ctx.Err() != nil {
			break
		}

		delay := backoffDelay(inv.cfg.RetryBaseDelay, attempt)
		inv.log.WithFields(logrus.Fields{
			"provider": call.Provider,
			"attempt":  attempt + 1,
			"delay":    delay,
		}).Warnf("transient error, retrying: %v", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return &models.Response{
				Provider: call.Provider,
				Success:  false,
				Error:    lastErr.Error(),
			}
		}
	}

	inv.log.WithField("provider", call.Provider).Warnf("failed after %d attempts: %v", inv.cfg.MaxRetries, lastErr)
	return &models.Response{
		Provider: call.Provider,
		Success:  false,
		Error:    lastErr.Error(),
	}
}

// runOnce executes the subprocess a single time and classifies the
// outcome. It returns a TransientError for non-zero exits and timeouts,
// a FatalError when the executable is missing, and otherwise a response.
func (inv *Invoker) runOnce(ctx context.Context, call Invocation, timeout time.Duration) (*models.Response, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, err := inv.runner.Run(runCtx, call.WorkDir, call.Argv[0], call.Argv[1:]...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fatalf("%s command not found: %v", call.Provider, err)
		}
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, transientf("%s CLI timed out after %s", call.Provider, timeout)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(string(stderr))
			if detail == "" {
				detail = fmt.Sprintf("exit code %d", exitErr.ExitCode())
			}
			return nil, transientf("%s CLI failed (rc=%d): %s", call.Provider, exitErr.ExitCode(), detail)
		}
		return nil, transientf("%s CLI failed: %v", call.Provider, err)
	}

	output := strings.TrimSpace(string(stdout))
	diag := strings.TrimSpace(string(stderr))

	// A clean exit with no stdout but diagnostic output is an
	// application-reported failure, not a transport error. It is not
	// retried.
	if output == "" && diag != "" {
		return &models.Response{
			Provider: call.Provider,
			Success:  false,
			Error:    diag,
		}, nil
	}

	if output == "" {
		output = emptyOutput
	}
	return &models.Response{
		Provider: call.Provider,
		Response: output,
		Success:  true,
	}, nil
}

// backoffDelay computes base*2^attempt plus jitter, capped at backoffCap.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base << uint(attempt)
	if delay > backoffCap {
		return backoffCap
	}
	jitter := time.Duration(rand.Int63n(int64(base) + 1))
	if delay+jitter > backoffCap {
		return backoffCap
	}
	return delay + jitter
}
