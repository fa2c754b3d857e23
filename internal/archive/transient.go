package archive

import (
	"errors"
	"os"

	"github.com/quantmind-br/scaffold-go/internal/domain"
)

// TransientPattern names the downloaded archive while the pipeline runs
const TransientPattern = ".scaffold-template-*.zip"

// Persist writes data to a uniquely named file in dir.
// A partially written file is removed before returning an error.
func Persist(dir string, data []byte) (*domain.TransientArchive, error) {
	f, err := os.CreateTemp(dir, TransientPattern)
	if err != nil {
		return nil, &domain.WriteError{Path: dir, Err: err}
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, &domain.WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, &domain.WriteError{Path: path, Err: err}
	}

	return &domain.TransientArchive{
		LocalPath: path,
		Size:      int64(len(data)),
	}, nil
}

// Remove deletes the transient archive. A file that is already gone is
// not an error.
func Remove(a *domain.TransientArchive) error {
	if a == nil || a.LocalPath == "" {
		return nil
	}
	if err := os.Remove(a.LocalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
