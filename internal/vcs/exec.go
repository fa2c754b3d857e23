package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantmind-br/scaffold-go/internal/config"
	"github.com/quantmind-br/scaffold-go/internal/domain"
	"github.com/quantmind-br/scaffold-go/internal/utils"
)

// ExecInitializer runs the system git binary. Its output goes straight
// to the user's terminal.
type ExecInitializer struct {
	runner  CommandRunner
	command string
	args    []string
	logger  *utils.Logger
}

// ExecOptions contains options for creating an ExecInitializer
type ExecOptions struct {
	Runner  CommandRunner
	Command string
	Args    []string
	Logger  *utils.Logger
}

// NewExecInitializer creates an initializer that shells out to git
func NewExecInitializer(opts ExecOptions) *ExecInitializer {
	if opts.Runner == nil {
		opts.Runner = NewExecRunner()
	}
	if opts.Command == "" {
		opts.Command = config.DefaultVCSCommand
	}
	if len(opts.Args) == 0 {
		opts.Args = append([]string(nil), config.DefaultVCSArgs...)
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &ExecInitializer{
		runner:  opts.Runner,
		command: opts.Command,
		args:    opts.Args,
		logger:  logger.WithComponent("vcs"),
	}
}

// Name returns the backend name
func (i *ExecInitializer) Name() string {
	return config.VCSBackendExec
}

// CommandLine returns the command as typed in a shell
func (i *ExecInitializer) CommandLine() string {
	return strings.Join(append([]string{i.command}, i.args...), " ")
}

// Init runs the configured command with dir as working directory
func (i *ExecInitializer) Init(ctx context.Context, dir string) error {
	cmdline := i.CommandLine()
	i.logger.Debug().Str("dir", dir).Str("command", cmdline).Msg("Initializing repository")

	code, err := i.runner.Run(ctx, i.command, i.args, dir)
	if err != nil {
		return &domain.VCSInitError{Command: cmdline, ExitCode: -1, Err: err}
	}
	if code != 0 {
		return &domain.VCSInitError{
			Command:  cmdline,
			ExitCode: code,
			Err:      fmt.Errorf("exit status %d", code),
		}
	}
	return nil
}
