package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// ZipEntry describes one member of a test archive.
// Names ending in "/" are directories; LinkTo makes a symlink.
type ZipEntry struct {
	Name   string
	Body   string
	Mode   os.FileMode
	LinkTo string
}

// BuildZip returns an in-memory zip archive with the given entries
func BuildZip(t *testing.T, entries []ZipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
		switch {
		case e.LinkTo != "":
			hdr.SetMode(os.ModeSymlink | 0777)
		case e.Mode != 0:
			hdr.SetMode(e.Mode)
		}

		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)

		body := e.Body
		if e.LinkTo != "" {
			body = e.LinkTo
		}
		if body != "" {
			_, err = w.Write([]byte(body))
			require.NoError(t, err)
		}
	}

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// TemplateZip mimics a tag snapshot archive: everything lives under a
// single "react-template-1/" folder.
func TemplateZip(t *testing.T) []byte {
	t.Helper()

	return BuildZip(t, []ZipEntry{
		{Name: "react-template-1/"},
		{Name: "react-template-1/package.json", Body: `{"name":"react-template","scripts":{"start":"react-scripts start"}}`},
		{Name: "react-template-1/README.md", Body: "# React Template\n"},
		{Name: "react-template-1/public/"},
		{Name: "react-template-1/public/index.html", Body: "<div id=\"root\"></div>"},
		{Name: "react-template-1/src/"},
		{Name: "react-template-1/src/index.js", Body: "import App from './App';\n"},
		{Name: "react-template-1/src/App.js", Body: "export default function App() {}\n"},
	})
}

// TemplateFiles lists the files TemplateZip produces after the wrapper
// folder is stripped, with their contents.
func TemplateFiles() map[string]string {
	return map[string]string{
		"package.json":      `{"name":"react-template","scripts":{"start":"react-scripts start"}}`,
		"README.md":         "# React Template\n",
		"public/index.html": "<div id=\"root\"></div>",
		"src/index.js":      "import App from './App';\n",
		"src/App.js":        "export default function App() {}\n",
	}
}

// WriteZip writes an archive built from entries into dir and returns its path
func WriteZip(t *testing.T, dir string, entries []ZipEntry) string {
	t.Helper()

	path := filepath.Join(dir, "fixture.zip")
	require.NoError(t, os.WriteFile(path, BuildZip(t, entries), 0644))
	return path
}
