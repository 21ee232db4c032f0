package vault

import "errors"

var (
	// ErrNotFound is returned when a document or revision id is unknown.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a revision number was taken by a
	// concurrent append. The import pipeline retries these.
	ErrConflict = errors.New("revision number conflict")
	// ErrIntegrity is returned when stored content is missing or no longer
	// matches the hash recorded in the ledger.
	ErrIntegrity = errors.New("stored content integrity violation")
)
