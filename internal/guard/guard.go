// Package guard enforces that a scaffold destination is free before any
// network or filesystem write happens.
package guard

import (
	"github.com/quantmind-br/scaffold-go/internal/domain"
	"github.com/quantmind-br/scaffold-go/internal/utils"
)

// exists is replaceable in tests
var exists = utils.Exists

// Check fails with a DestinationError when any entry occupies path.
// It never modifies the filesystem.
func Check(path string) error {
	found, err := exists(path)
	if err != nil {
		return &domain.DestinationError{Path: path, Err: err}
	}
	if found {
		return domain.NewDestinationExistsError(path)
	}
	return nil
}
