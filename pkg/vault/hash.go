package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// hashChunkSize bounds the memory used while fingerprinting a source.
const hashChunkSize = 1024 * 1024

// HashReader streams the reader to completion and returns the hexadecimal
// SHA-256 fingerprint of its content.
func HashReader(r io.Reader) (string, error) {
	digest := sha256.New()
	buf := make([]byte, hashChunkSize)

	if _, err := io.CopyBuffer(digest, r, buf); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

// HashBytes returns the hexadecimal SHA-256 fingerprint of the given bytes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
