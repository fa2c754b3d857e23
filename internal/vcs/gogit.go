package vcs

import (
	"context"

	"github.com/quantmind-br/scaffold-go/internal/config"
	"github.com/quantmind-br/scaffold-go/internal/domain"
	"github.com/quantmind-br/scaffold-go/internal/git"
	"github.com/quantmind-br/scaffold-go/internal/utils"
)

// GoGitInitializer creates the repository in-process with go-git,
// so no git binary is required.
type GoGitInitializer struct {
	client git.Client
	logger *utils.Logger
}

// NewGoGitInitializer creates a go-git backed initializer
func NewGoGitInitializer(client git.Client, logger *utils.Logger) *GoGitInitializer {
	if client == nil {
		client = git.NewClient()
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &GoGitInitializer{client: client, logger: logger.WithComponent("vcs")}
}

// Name returns the backend name
func (g *GoGitInitializer) Name() string {
	return config.VCSBackendGoGit
}

// Init creates a non-bare repository in dir
func (g *GoGitInitializer) Init(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return &domain.VCSInitError{Command: "go-git init", ExitCode: -1, Err: err}
	}
	if _, err := g.client.PlainInit(dir, false); err != nil {
		return &domain.VCSInitError{Command: "go-git init", ExitCode: -1, Err: err}
	}
	g.logger.Debug().Str("dir", dir).Msg("Repository initialized")
	return nil
}
