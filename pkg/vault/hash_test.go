package vault

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytesKnownVector(t *testing.T) {
	assert.Equal(t,
		"b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		HashBytes([]byte("hello world")))
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashBytes(nil))
}

func TestHashReaderMatchesHashBytes(t *testing.T) {
	content := bytes.Repeat([]byte("G1 X10 Y10 F100\n"), 4096)

	sum, err := HashReader(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, HashBytes(content), sum)

	sum, err = HashReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, HashBytes(nil), sum)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("read failure")
}

func TestHashReaderPropagatesReadError(t *testing.T) {
	_, err := HashReader(brokenReader{})
	assert.Error(t, err)
}
