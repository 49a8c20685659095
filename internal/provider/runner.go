// Package provider executes external AI CLI tools as subprocesses and
// normalizes their outcomes into uniform responses. Transient failures
// (non-zero exit, timeout) are retried with exponential backoff; a
// missing executable is fatal and surfaces immediately.
package provider

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking command execution in tests.
type CommandRunner interface {
	// Run executes a command and returns captured stdout and stderr.
	// The working directory is set to workDir if non-empty. The
	// process is killed when the context is canceled or times out.
	Run(ctx context.Context, workDir string, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// NewRunner creates a new ExecRunner.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes a command with separate stdout/stderr capture.
func (r *ExecRunner) Run(ctx context.Context, workDir string, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Verify ExecRunner implements CommandRunner at compile time.
var _ CommandRunner = (*ExecRunner)(nil)
