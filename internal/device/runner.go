package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run executes name with args, returning a descriptive error on failure
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), ctxErr)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return nil, nil, fmt.Errorf("command not found: %s: %w", name, err)
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%s %s failed (exit %d): %s: %w",
			name, strings.Join(args, " "), ee.ExitCode(), msg, err)
	}
	return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("failed to run %s: %w", name, err)
}
