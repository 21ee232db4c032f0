package vault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/toolvault/pkg/db/models"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"Program1.txt", "Program1"},
		{"Program1_updated.txt", "Program1 updated"},
		{"part_a_rev2.nc", "part a rev2"},
		{"sub/dir/file_name.pdf", "file name"},
		{"sub\\dir\\file_name.pdf", "file name"},
		{"  spaced   name  .txt", "spaced name"},
		{"___.txt", ""},
		{"no-extension", "no-extension"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.filename))
		})
	}
}

func TestCatalogResolvePrefersNameMatch(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	alpha := importBytes(t, v, []byte("alpha content"), "Alpha.txt", "Line A", "Mill-1", models.DocTypeProgram)
	beta := importBytes(t, v, []byte("beta content"), "Beta.txt", "Line A", "Mill-1", models.DocTypeProgram)

	// Name matches alpha while the hash matches beta; the name wins.
	doc, err := v.Catalog().Resolve(ctx, "Line A", "Mill-1", models.DocTypeProgram, "Alpha", beta.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, alpha.DocumentID, doc.ID)
}

func TestCatalogResolveFallsBackToHash(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	alpha := importBytes(t, v, []byte("alpha content"), "Alpha.txt", "Line A", "Mill-1", models.DocTypeProgram)

	doc, err := v.Catalog().Resolve(ctx, "Line A", "Mill-1", models.DocTypeProgram, "Renamed", alpha.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, alpha.DocumentID, doc.ID)
}

func TestCatalogResolveScopedToIdentity(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	alpha := importBytes(t, v, []byte("alpha content"), "Alpha.txt", "Line A", "Mill-1", models.DocTypeProgram)

	// Same name and hash on another machine is a different identity.
	_, err := v.Catalog().Resolve(ctx, "Line A", "Mill-2", models.DocTypeProgram, "Alpha", alpha.ContentHash)
	assert.ErrorIs(t, err, ErrNotFound)

	// Same goes for the other document type.
	_, err = v.Catalog().Resolve(ctx, "Line A", "Mill-1", models.DocTypePrint, "Alpha", alpha.ContentHash)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogCreateDuplicateIdentity(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	_, err := v.Catalog().Create(ctx, "Line A", "Mill-1", models.DocTypeProgram, "Program1", "tester")
	require.NoError(t, err)

	_, err = v.Catalog().Create(ctx, "Line A", "Mill-1", models.DocTypeProgram, "Program1", "tester")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCatalogCreateRejectsUnknownType(t *testing.T) {
	v, _ := newTestVault(t)

	_, err := v.Catalog().Create(context.Background(), "Line A", "Mill-1", "drawing", "Program1", "tester")
	assert.Error(t, err)
}

func TestCatalogGetUnknownDocument(t *testing.T) {
	v, _ := newTestVault(t)

	_, err := v.Catalog().Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogDeactivateUnknownDocument(t *testing.T) {
	v, _ := newTestVault(t)

	err := v.Catalog().Deactivate(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogListFilters(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	importBytes(t, v, []byte("program"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)
	importBytes(t, v, []byte("print"), "Fixture_Drawing.pdf", "Line A", "Mill-1", models.DocTypePrint)

	all, err := v.Catalog().List(ctx, "Line A", "Mill-1", "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	programs, err := v.Catalog().List(ctx, "Line A", "Mill-1", models.DocTypeProgram, "")
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, "Program1", programs[0].Name)

	matched, err := v.Catalog().List(ctx, "Line A", "Mill-1", "", "Drawing")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Fixture Drawing", matched[0].Name)

	none, err := v.Catalog().List(ctx, "Line B", "Mill-1", "", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}
