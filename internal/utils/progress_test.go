package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpinner(t *testing.T) {
	var buf bytes.Buffer

	bar := NewSpinner(DescDownloading, &buf)

	require.NotNil(t, bar)
	assert.Contains(t, buf.String(), DescDownloading)
}

func TestSpinnerReporter(t *testing.T) {
	t.Run("success marker", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewSpinnerReporter(&buf)
		r.interval = time.Millisecond

		h := r.Begin(DescDownloading)
		time.Sleep(10 * time.Millisecond)
		r.End(h, true)

		assert.Contains(t, buf.String(), "done "+DescDownloading)
	})

	t.Run("failure marker", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewSpinnerReporter(&buf)

		h := r.Begin(DescExtracting)
		r.End(h, false)

		assert.Contains(t, buf.String(), "failed "+DescExtracting)
	})

	t.Run("end is idempotent", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewSpinnerReporter(&buf)

		h := r.Begin("phase")
		r.End(h, true)
		r.End(h, false)

		assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("phase\n")))
		assert.NotContains(t, buf.String(), "failed phase")
	})

	t.Run("foreign handle ignored", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewSpinnerReporter(&buf)

		assert.NotPanics(t, func() {
			r.End(nil, true)
			r.End("not a handle", true)
		})
		assert.Empty(t, buf.String())
	})
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerOptions{Level: "info", Format: "json", Output: &buf})
	r := NewLogReporter(logger)

	h := r.Begin(DescDownloading)
	r.End(h, false)

	out := buf.String()
	assert.Contains(t, out, DescDownloading)
	assert.Contains(t, out, `"outcome":"failed"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"component":"progress"`)
}

func TestLogReporter_NilLogger(t *testing.T) {
	r := NewLogReporter(nil)
	assert.NotPanics(t, func() {
		r.End(r.Begin("quiet"), true)
	})
}

func TestNopReporter(t *testing.T) {
	var r NopReporter
	assert.Nil(t, r.Begin("anything"))
	assert.NotPanics(t, func() { r.End(nil, false) })
}

func TestNewReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewNopLogger()

	assert.IsType(t, &SpinnerReporter{}, NewReporter(StyleSpinner, &buf, logger))
	assert.IsType(t, &LogReporter{}, NewReporter(StyleLog, &buf, logger))
	assert.IsType(t, NopReporter{}, NewReporter(StyleNone, &buf, logger))
	assert.IsType(t, &LogReporter{}, NewReporter("unknown", &buf, logger))
}
