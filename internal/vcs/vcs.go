// Package vcs initializes a version-control repository inside a freshly
// scaffolded project.
package vcs

import (
	"fmt"

	"github.com/quantmind-br/scaffold-go/internal/config"
	"github.com/quantmind-br/scaffold-go/internal/domain"
	"github.com/quantmind-br/scaffold-go/internal/git"
	"github.com/quantmind-br/scaffold-go/internal/utils"
)

// Options contains the collaborators used by New
type Options struct {
	Config config.VCSConfig
	Runner CommandRunner
	Git    git.Client
	Logger *utils.Logger
}

// New returns the initializer selected by opts.Config.Backend
func New(opts Options) (domain.VCSInitializer, error) {
	switch opts.Config.Backend {
	case "", config.VCSBackendExec:
		return NewExecInitializer(ExecOptions{
			Runner:  opts.Runner,
			Command: opts.Config.Command,
			Args:    opts.Config.Args,
			Logger:  opts.Logger,
		}), nil
	case config.VCSBackendGoGit:
		return NewGoGitInitializer(opts.Git, opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown vcs backend: %s", opts.Config.Backend)
	}
}
