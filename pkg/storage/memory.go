package storage

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sync"
)

// MemoryBackend keeps stored content in memory. It is used by tests and by
// dry runs where nothing should touch the real storage root.
type MemoryBackend struct {
	mutex sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		blobs: make(map[string][]byte),
	}
}

func (b *MemoryBackend) normalize(key string) (string, error) {
	if key == "" || path.IsAbs(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return path.Clean(key), nil
}

func (b *MemoryBackend) Write(key string, r io.Reader) (int64, error) {
	key, err := b.normalize(key)
	if err != nil {
		return 0, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read content for %s: %w", key, err)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if _, ok := b.blobs[key]; ok {
		return 0, fmt.Errorf("%w: %s", ErrKeyExists, key)
	}
	b.blobs[key] = data

	return int64(len(data)), nil
}

func (b *MemoryBackend) Open(key string) (io.ReadCloser, error) {
	key, err := b.normalize(key)
	if err != nil {
		return nil, err
	}

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	data, ok := b.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *MemoryBackend) Exists(key string) (bool, error) {
	key, err := b.normalize(key)
	if err != nil {
		return false, err
	}

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	_, ok := b.blobs[key]
	return ok, nil
}

func (b *MemoryBackend) Remove(key string) error {
	key, err := b.normalize(key)
	if err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if _, ok := b.blobs[key]; !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	delete(b.blobs, key)

	return nil
}

// Len returns the number of stored keys.
func (b *MemoryBackend) Len() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return len(b.blobs)
}
