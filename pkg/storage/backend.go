package storage

import (
	"errors"
	"io"
)

var (
	// ErrKeyExists is returned when writing to a key that already holds content.
	// Stored content is append-only and is never overwritten in place.
	ErrKeyExists = errors.New("storage key already exists")
	// ErrKeyNotFound is returned when reading or removing a missing key.
	ErrKeyNotFound = errors.New("storage key not found")
	// ErrInvalidKey is returned for keys that are empty or escape the root.
	ErrInvalidKey = errors.New("invalid storage key")
)

// Backend is the storage capability injected into the document vault.
// Keys are slash-separated paths relative to the backend root. A backend
// must refuse to overwrite an existing key; revision content is immutable
// once written.
type Backend interface {
	// Write stores the content of r under key and returns the byte count.
	// Intermediate directories are created on demand.
	Write(key string, r io.Reader) (int64, error)
	// Open returns a reader over the content stored under key.
	Open(key string) (io.ReadCloser, error)
	// Exists reports whether key holds content.
	Exists(key string) (bool, error)
	// Remove deletes the content stored under key.
	Remove(key string) error
}
