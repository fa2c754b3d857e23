package domain

import (
	"path/filepath"
	"strings"
)

// ScaffoldRequest describes a single create invocation
type ScaffoldRequest struct {
	AppName         string
	DestinationPath string
}

// NewScaffoldRequest resolves appName against workDir.
// An absolute appName is used as is.
func NewScaffoldRequest(appName, workDir string) (ScaffoldRequest, error) {
	name := strings.TrimSpace(appName)
	if name == "" {
		return ScaffoldRequest{}, NewValidationError("app-name", "must not be empty")
	}

	dest := name
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(workDir, dest)
	}
	dest, err := filepath.Abs(dest)
	if err != nil {
		return ScaffoldRequest{}, NewValidationError("app-name", err.Error())
	}

	return ScaffoldRequest{
		AppName:         name,
		DestinationPath: dest,
	}, nil
}

// TemplateSource is the fixed location of the project template
type TemplateSource struct {
	URL string
}

// TransientArchive is the downloaded archive saved next to the destination
type TransientArchive struct {
	LocalPath string
	Size      int64
}

// State is a position in the scaffold pipeline
type State int

const (
	StateIdle State = iota
	StateGuardChecked
	StateFetched
	StatePersisted
	StateExtracted
	StateCleanedUp
	StateVCSInitialized
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:           "idle",
	StateGuardChecked:   "guard-checked",
	StateFetched:        "fetched",
	StatePersisted:      "persisted",
	StateExtracted:      "extracted",
	StateCleanedUp:      "cleaned-up",
	StateVCSInitialized: "vcs-initialized",
	StateDone:           "done",
	StateFailed:         "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// ScaffoldResult is the outcome of one pipeline run.
// A nil Err means success.
type ScaffoldResult struct {
	Request ScaffoldRequest
	State   State
	// LastState is the last state reached before failing
	LastState State
	Err       error
}

// Succeeded reports whether the pipeline reached Done
func (r *ScaffoldResult) Succeeded() bool {
	return r != nil && r.Err == nil && r.State == StateDone
}

// FailedStage returns the stage that caused the failure, if any
func (r *ScaffoldResult) FailedStage() Stage {
	if r == nil || r.Err == nil {
		return ""
	}
	stage, _ := StageOf(r.Err)
	return stage
}
