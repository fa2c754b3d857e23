package vcs

//go:generate mockgen -destination=../../tests/mocks/runner_mock.go -package=mocks . CommandRunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/quantmind-br/scaffold-go/internal/domain"
)

// CommandRunner runs an external command in a working directory.
//
// A process that starts and exits non-zero is reported through the exit
// code with a nil error. The error is reserved for commands that never
// ran or were interrupted.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, dir string) (int, error)
}

// ExecRunner is the os/exec implementation of CommandRunner.
// Nil streams inherit the parent's stdio.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates a runner wired to the process stdio
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes name with args inside dir
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, dir string) (int, error) {
	bin, err := exec.LookPath(name)
	if err != nil {
		return -1, fmt.Errorf("%w: %s", toolError(err), name)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, toolError(err)
}

// toolError maps "not found" failures onto domain.ErrToolNotFound
func toolError(err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return domain.ErrToolNotFound
	}
	return err
}
