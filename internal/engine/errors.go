package engine

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-medreminder/internal/config"
)

// Error kinds surfaced by the engine. Callers match them with errors.Is.
var (
	// ErrValidation rejects a record at append; the store is left unchanged.
	ErrValidation = errors.New(config.ErrValidation)

	// ErrNotFound is returned by lookups that require a match.
	// RemoveTime reports a missing record as the NotFound outcome instead.
	ErrNotFound = errors.New(config.ErrNotFound)

	// ErrMalformedEntry marks an unparseable day name, time or date.
	ErrMalformedEntry = errors.New(config.ErrMalformedEntry)

	// ErrStorage wraps any failure of the underlying key-value store.
	ErrStorage = errors.New(config.ErrStorage)
)

func malformed(reason, value string) error {
	return fmt.Errorf("%w: %s: %q", ErrMalformedEntry, reason, value)
}

func storageErr(reason string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, reason, err)
}
