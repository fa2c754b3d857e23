package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewClient tests creating a new client
func TestNewClient(t *testing.T) {
	client := NewClient()
	assert.NotNil(t, client)
}

// TestRealClient_PlainInit tests repository creation
func TestRealClient_PlainInit(t *testing.T) {
	t.Run("creates repository in directory", func(t *testing.T) {
		dir := t.TempDir()

		repo, err := NewClient().PlainInit(dir, false)
		require.NoError(t, err)
		require.NotNil(t, repo)

		info, err := os.Stat(filepath.Join(dir, ".git"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		_, err = git.PlainOpen(dir)
		assert.NoError(t, err)
	})

	t.Run("existing repository", func(t *testing.T) {
		dir := t.TempDir()
		client := NewClient()

		_, err := client.PlainInit(dir, false)
		require.NoError(t, err)

		_, err = client.PlainInit(dir, false)
		assert.ErrorIs(t, err, git.ErrRepositoryAlreadyExists)
	})

	t.Run("bare repository", func(t *testing.T) {
		dir := t.TempDir()

		_, err := NewClient().PlainInit(dir, true)
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(dir, "HEAD"))
		assert.NoError(t, err)
	})
}
