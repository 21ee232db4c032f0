package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalBackend stores content below a root directory on the local filesystem.
type LocalBackend struct {
	root string
}

// NewLocalBackend creates a backend rooted at the given directory, creating
// the directory if it does not exist yet.
func NewLocalBackend(root string) (*LocalBackend, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}

	return &LocalBackend{root: root}, nil
}

// Root returns the backend's root directory.
func (b *LocalBackend) Root() string {
	return b.root
}

// resolve converts a storage key into an absolute path below the root.
func (b *LocalBackend) resolve(key string) (string, error) {
	if key == "" || path.IsAbs(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	cleaned := path.Clean(key)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return filepath.Join(b.root, filepath.FromSlash(cleaned)), nil
}

func (b *LocalBackend) Write(key string, r io.Reader) (int64, error) {
	target, err := b.resolve(key)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	// O_EXCL guarantees stored content is never overwritten in place.
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, fmt.Errorf("%w: %s", ErrKeyExists, key)
		}
		return 0, fmt.Errorf("failed to create %s: %w", key, err)
	}

	written, err := io.Copy(file, r)
	if err != nil {
		file.Close()
		os.Remove(target)
		return 0, fmt.Errorf("failed to write %s: %w", key, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(target)
		return 0, fmt.Errorf("failed to close %s: %w", key, err)
	}

	return written, nil
}

func (b *LocalBackend) Open(key string) (io.ReadCloser, error) {
	target, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}

	return file, nil
}

func (b *LocalBackend) Exists(key string) (bool, error) {
	target, err := b.resolve(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}

	return true, nil
}

func (b *LocalBackend) Remove(key string) error {
	target, err := b.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	return nil
}
