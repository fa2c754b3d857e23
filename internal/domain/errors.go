package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrDestinationExists indicates the target path is already occupied
	ErrDestinationExists = errors.New("destination already exists")

	// ErrUnsafeEntry indicates an archive entry would escape the destination
	ErrUnsafeEntry = errors.New("unsafe archive entry")

	// ErrCorruptArchive indicates the archive could not be read
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrEmptyArchive indicates the archive has no extractable entries
	ErrEmptyArchive = errors.New("empty archive")

	// ErrTooLarge indicates the downloaded archive exceeded the size limit
	ErrTooLarge = errors.New("archive exceeds size limit")

	// ErrToolNotFound indicates the version-control executable is missing
	ErrToolNotFound = errors.New("version-control tool not found")

	// ErrRateLimited indicates rate limiting was encountered
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("timeout")
)

// Stage identifies the pipeline step an error came from
type Stage string

const (
	StageGuard   Stage = "destination"
	StageFetch   Stage = "fetch"
	StagePersist Stage = "write"
	StageExtract Stage = "extract"
	StageVCS     Stage = "vcs-init"
)

// StageError is implemented by every error the pipeline can fail with
type StageError interface {
	error
	Stage() Stage
}

// StageOf returns the pipeline stage responsible for err
func StageOf(err error) (Stage, bool) {
	var se StageError
	if errors.As(err, &se) {
		return se.Stage(), true
	}
	return "", false
}

// DestinationError represents a failed destination precondition
type DestinationError struct {
	Path string
	Err  error
}

func (e *DestinationError) Error() string {
	if errors.Is(e.Err, ErrDestinationExists) {
		return fmt.Sprintf("directory %s already exists", e.Path)
	}
	return fmt.Sprintf("cannot check %s: %v", e.Path, e.Err)
}

func (e *DestinationError) Unwrap() error { return e.Err }

func (e *DestinationError) Stage() Stage { return StageGuard }

// NewDestinationExistsError creates a DestinationError for an occupied path
func NewDestinationExistsError(path string) *DestinationError {
	return &DestinationError{Path: path, Err: ErrDestinationExists}
}

// FetchError represents an error during fetching
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Stage() Stage { return StageFetch }

// NewFetchError creates a new FetchError
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// WriteError represents a failure to persist the transient archive
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("write error: %v", e.Err)
	}
	return fmt.Sprintf("write error for %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Stage() Stage { return StagePersist }

// ExtractError represents a failure to unpack the archive
type ExtractError struct {
	Entry string
	Err   error
}

func (e *ExtractError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("extract error at %q: %v", e.Entry, e.Err)
	}
	return fmt.Sprintf("extract error: %v", e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

func (e *ExtractError) Stage() Stage { return StageExtract }

// NewExtractError creates a new ExtractError
func NewExtractError(entry string, err error) *ExtractError {
	return &ExtractError{Entry: entry, Err: err}
}

// VCSInitError represents a failed repository initialization.
// ExitCode is -1 when the tool could not be started at all.
type VCSInitError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *VCSInitError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *VCSInitError) Unwrap() error { return e.Err }

func (e *VCSInitError) Stage() Stage { return StageVCS }

// RetryableError indicates an error that can be retried
type RetryableError struct {
	Err        error
	RetryAfter int // Seconds to wait before retry, 0 if unknown
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("retryable error (retry after %ds): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("retryable error: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return true
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.StatusCode {
		case 429, 502, 503, 504:
			return true
		}
		// Cloudflare errors
		if fetchErr.StatusCode >= 520 && fetchErr.StatusCode <= 530 {
			return true
		}
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
