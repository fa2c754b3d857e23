package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertTree asserts every file in want exists under root with the given content
func AssertTree(t *testing.T, root string, want map[string]string) {
	t.Helper()

	for rel, content := range want {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		require.NoError(t, err, "missing %s", rel)
		assert.Equal(t, content, string(data), "content of %s", rel)
	}
}

// AssertNotExists asserts nothing occupies path
func AssertNotExists(t *testing.T, path string) {
	t.Helper()

	_, err := os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "expected %s to be absent, got err=%v", path, err)
}
