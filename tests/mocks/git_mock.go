package mocks

import (
	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/mock"
)

// MockGitClient mocks the GitClient interface
type MockGitClient struct {
	mock.Mock
}

// PlainInit mocks repository initialization
func (m *MockGitClient) PlainInit(path string, isBare bool) (*git.Repository, error) {
	args := m.Called(path, isBare)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*git.Repository), args.Error(1)
}
