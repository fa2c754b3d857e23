package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/quantmind-br/scaffold-go/internal/domain"
	"github.com/schollz/progressbar/v3"
)

// Standard progress descriptions
const (
	DescDownloading = "Downloading template"
	DescExtracting  = "Extracting template"
)

// Progress styles understood by NewReporter
const (
	StyleSpinner = "spinner"
	StyleLog     = "log"
	StyleNone    = "none"
)

const spinnerInterval = 100 * time.Millisecond

// NewSpinner creates a consistently styled indeterminate progress bar.
// It only redraws when Add is called; SpinnerReporter drives it on a ticker.
func NewSpinner(description string, out io.Writer) *progressbar.ProgressBar {
	if out == nil {
		out = os.Stdout
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetElapsedTime(false),
	)
}

// NewReporter returns the reporter for a configured style.
// Unknown styles fall back to the log reporter.
func NewReporter(style string, out io.Writer, logger *Logger) domain.ProgressReporter {
	switch style {
	case StyleSpinner:
		return NewSpinnerReporter(out)
	case StyleNone:
		return NopReporter{}
	default:
		return NewLogReporter(logger)
	}
}

// SpinnerReporter animates a terminal spinner while a phase runs
type SpinnerReporter struct {
	out      io.Writer
	interval time.Duration
}

// NewSpinnerReporter creates a SpinnerReporter writing to out
func NewSpinnerReporter(out io.Writer) *SpinnerReporter {
	if out == nil {
		out = os.Stdout
	}
	return &SpinnerReporter{out: out, interval: spinnerInterval}
}

type spinnerHandle struct {
	label string
	bar   *progressbar.ProgressBar
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// Begin starts the spinner
func (r *SpinnerReporter) Begin(label string) domain.ProgressHandle {
	h := &spinnerHandle{
		label: label,
		bar:   NewSpinner(label, r.out),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go h.spin(r.interval)
	return h
}

func (h *spinnerHandle) spin(interval time.Duration) {
	defer close(h.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			_ = h.bar.Add(1)
		}
	}
}

// End stops the spinner and prints a one-line outcome
func (r *SpinnerReporter) End(handle domain.ProgressHandle, succeeded bool) {
	h, ok := handle.(*spinnerHandle)
	if !ok || h == nil {
		return
	}
	h.once.Do(func() {
		close(h.stop)
		<-h.done
		_ = h.bar.Clear()
		fmt.Fprintf(r.out, "%s %s\n", outcomeMarker(succeeded), h.label)
	})
}

func outcomeMarker(succeeded bool) string {
	if succeeded {
		return "done"
	}
	return "failed"
}

// LogReporter reports phases as log lines
type LogReporter struct {
	logger *Logger
}

// NewLogReporter creates a LogReporter; a nil logger discards output
func NewLogReporter(logger *Logger) *LogReporter {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &LogReporter{logger: logger.WithComponent("progress")}
}

type logHandle struct {
	label   string
	started time.Time
}

// Begin logs the start of a phase
func (r *LogReporter) Begin(label string) domain.ProgressHandle {
	r.logger.Info().Msg(label)
	return &logHandle{label: label, started: time.Now()}
}

// End logs the outcome of a phase
func (r *LogReporter) End(handle domain.ProgressHandle, succeeded bool) {
	h, ok := handle.(*logHandle)
	if !ok || h == nil {
		return
	}
	event := r.logger.Info()
	if !succeeded {
		event = r.logger.Warn()
	}
	event.Dur("elapsed", time.Since(h.started)).
		Str("outcome", outcomeMarker(succeeded)).
		Msg(h.label)
}

// NopReporter ignores all progress signals
type NopReporter struct{}

func (NopReporter) Begin(string) domain.ProgressHandle { return nil }

func (NopReporter) End(domain.ProgressHandle, bool) {}
