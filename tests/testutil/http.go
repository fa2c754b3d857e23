package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// TemplateServer serves a fixed archive body and counts requests
type TemplateServer struct {
	*httptest.Server
	hits   atomic.Int32
	status atomic.Int32
	body   atomic.Value
}

// NewTemplateServer starts a server answering every GET with body
func NewTemplateServer(t *testing.T, body []byte) *TemplateServer {
	t.Helper()

	ts := &TemplateServer{}
	ts.status.Store(http.StatusOK)
	ts.body.Store(body)

	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		status := int(ts.status.Load())
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Write(ts.body.Load().([]byte))
	}))

	t.Cleanup(ts.Server.Close)
	return ts
}

// ArchiveURL returns the URL the template is served at
func (ts *TemplateServer) ArchiveURL() string {
	return ts.URL + "/archive/refs/tags/v1.zip"
}

// Hits returns the number of requests received
func (ts *TemplateServer) Hits() int {
	return int(ts.hits.Load())
}

// SetStatus makes subsequent requests fail with status
func (ts *TemplateServer) SetStatus(status int) {
	ts.status.Store(int32(status))
}

// SetBody replaces the served archive
func (ts *TemplateServer) SetBody(body []byte) {
	ts.body.Store(body)
}

// UnreachableURL returns a URL nothing listens on
func UnreachableURL(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url + "/v1.zip"
}
