package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// CommandResult is the outcome of a finished command. A non-zero exit code
// is a result, not an error.
type CommandResult struct {
	Stdout   string `json:"-"`
	Stderr   string `json:"-"`
	ExitCode int    `json:"exit_code"`
}

// Success reports whether the command exited with status zero.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// Output is stdout followed by stderr, the way the panel shows it.
func (r CommandResult) Output() string {
	return r.Stdout + r.Stderr
}

// Runner executes one external program without a shell.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// ExecRunner runs programs from a fixed allow-list via os/exec. Arguments
// are passed as argv, never through a shell.
type ExecRunner struct {
	allowed map[string]bool
}

// NewExecRunner creates a runner that only starts the named programs.
func NewExecRunner(programs ...string) *ExecRunner {
	allowed := make(map[string]bool, len(programs))
	for _, p := range programs {
		allowed[p] = true
	}
	return &ExecRunner{allowed: allowed}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	if !r.allowed[name] {
		return CommandResult{}, fmt.Errorf("%w: %s", ErrNotAllowed, name)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrCommandTimeout, name, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	case errors.Is(err, exec.ErrNotFound):
		return res, fmt.Errorf("%w: %s", ErrUnavailable, name)
	default:
		return res, fmt.Errorf("run %s: %w", name, err)
	}
}
