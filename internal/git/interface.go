package git

import (
	"github.com/go-git/go-git/v5"
)

// Client defines the interface for Git operations
type Client interface {
	PlainInit(path string, isBare bool) (*git.Repository, error)
}
