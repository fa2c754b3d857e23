package domain

import "context"

// Fetcher retrieves a remote archive in full
type Fetcher interface {
	// Fetch downloads the whole body at url
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor unpacks an archive file into a destination directory
type Extractor interface {
	// Extract creates dest and fills it with the archive contents
	Extract(ctx context.Context, archivePath, dest string) error
}

// VCSInitializer creates a version-control repository in a directory
type VCSInitializer interface {
	// Name returns the backend name
	Name() string
	// Init initializes a repository rooted at dir
	Init(ctx context.Context, dir string) error
}

// ProgressHandle is an opaque token returned by ProgressReporter.Begin
type ProgressHandle interface{}

// ProgressReporter shows activity while a pipeline phase runs.
// Implementations must not affect pipeline control flow.
type ProgressReporter interface {
	// Begin starts reporting on a labelled phase
	Begin(label string) ProgressHandle
	// End stops reporting on the phase started by Begin
	End(handle ProgressHandle, succeeded bool)
}
