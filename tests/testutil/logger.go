package testutil

import (
	"bytes"
	"io"
	"testing"

	"github.com/quantmind-br/scaffold-go/internal/utils"
	"github.com/rs/zerolog"
)

// NewTestLogger creates a logger that discards output
func NewTestLogger(t *testing.T) *utils.Logger {
	t.Helper()

	zlogger := zerolog.New(io.Discard).With().
		Timestamp().
		Str("test", t.Name()).
		Logger()

	return &utils.Logger{Logger: zlogger}
}

// NewCapturingLogger creates a JSON logger writing into the returned buffer
func NewCapturingLogger(t *testing.T) (*utils.Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	return utils.NewLogger(utils.LoggerOptions{
		Level:  "debug",
		Format: "json",
		Output: &buf,
	}), &buf
}
