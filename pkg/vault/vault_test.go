package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/toolvault/pkg/db/models"
	"github.com/mwantia/toolvault/pkg/db/store"
	"github.com/mwantia/toolvault/pkg/log"
	"github.com/mwantia/toolvault/pkg/storage"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	metadata, err := store.NewSQLiteStore(store.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, metadata.Connect(context.Background()))
	require.NoError(t, metadata.Migrate(context.Background()))
	t.Cleanup(func() {
		metadata.Close()
	})

	return metadata
}

func newTestVault(t *testing.T) (*Vault, *storage.MemoryBackend) {
	t.Helper()

	backend := storage.NewMemoryBackend()
	return New(newTestStore(t), backend, log.NewNopLogger()), backend
}

func importBytes(t *testing.T, v *Vault, content []byte, filename, line, machine string, docType models.DocType) *models.Revision {
	t.Helper()

	rev, err := v.Import(context.Background(), bytes.NewReader(content), filename, line, machine, docType, "tester")
	require.NoError(t, err)
	return rev
}

func TestImportCreatesDocumentAndFirstRevision(t *testing.T) {
	v, backend := newTestVault(t)
	content := []byte("G0 X0 Y0\nG1 X10 Y10 F100\n")

	rev := importBytes(t, v, content, "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)

	assert.Equal(t, 1, rev.RevisionNumber)
	assert.Equal(t, "Program1.txt", rev.OriginalFilename)
	assert.Equal(t, HashBytes(content), rev.ContentHash)
	assert.Empty(t, rev.Notes)

	doc, err := v.Catalog().Get(context.Background(), rev.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "Program1", doc.Name)
	assert.Equal(t, models.DocTypeProgram, doc.DocType)
	assert.Equal(t, "tester", doc.CreatedBy)
	assert.True(t, doc.Active)

	exists, err := backend.Exists(rev.StoredPath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestImportDeduplicatesByContentHash(t *testing.T) {
	v, _ := newTestVault(t)
	content := []byte("G0 X0 Y0\n")

	first := importBytes(t, v, content, "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)
	// Renamed but byte-identical file resolves to the same document.
	second := importBytes(t, v, content, "Program1_updated.txt", "Line A", "Mill-1", models.DocTypeProgram)

	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.Equal(t, 2, second.RevisionNumber)
	assert.Equal(t, first.ContentHash, second.ContentHash)

	docs, err := v.Catalog().List(context.Background(), "Line A", "Mill-1", "", "")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0].CurrentRevision)
}

func TestImportDeduplicatesByName(t *testing.T) {
	v, _ := newTestVault(t)

	first := importBytes(t, v, []byte("version one"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)
	second := importBytes(t, v, []byte("version two"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)

	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.Equal(t, 2, second.RevisionNumber)
	assert.NotEqual(t, first.ContentHash, second.ContentHash)
}

func TestImportNewContentCreatesNewDocument(t *testing.T) {
	v, _ := newTestVault(t)

	first := importBytes(t, v, []byte("program one"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)
	second := importBytes(t, v, []byte("program two"), "Program2.txt", "Line A", "Mill-1", models.DocTypeProgram)

	assert.NotEqual(t, first.DocumentID, second.DocumentID)
	assert.Equal(t, 1, second.RevisionNumber)
}

func TestImportSameNameOtherMachineCreatesNewDocument(t *testing.T) {
	v, _ := newTestVault(t)
	content := []byte("shared program")

	first := importBytes(t, v, content, "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)
	second := importBytes(t, v, content, "Program1.txt", "Line A", "Mill-2", models.DocTypeProgram)

	assert.NotEqual(t, first.DocumentID, second.DocumentID)
}

func TestImportRejectsUnknownDocType(t *testing.T) {
	v, _ := newTestVault(t)

	_, err := v.Import(context.Background(), bytes.NewReader([]byte("x")), "a.txt", "Line A", "Mill-1", "drawing", "tester")
	assert.Error(t, err)
}

func TestRecallCreatesNewHeadRevision(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()
	original := []byte("first cut")

	first := importBytes(t, v, original, "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)
	importBytes(t, v, []byte("second cut"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)

	recalled, err := v.Recall(ctx, first.DocumentID, 1, "tester")
	require.NoError(t, err)

	assert.Equal(t, first.DocumentID, recalled.DocumentID)
	assert.Equal(t, 3, recalled.RevisionNumber)
	assert.Equal(t, first.ContentHash, recalled.ContentHash)
	assert.Equal(t, first.OriginalFilename, recalled.OriginalFilename)
	assert.Equal(t, RecallNotes, recalled.Notes)

	// History is never rewritten; the earlier revisions are untouched.
	revisions, err := v.Ledger().List(ctx, first.DocumentID)
	require.NoError(t, err)
	require.Len(t, revisions, 3)
	assert.Equal(t, 3, revisions[0].RevisionNumber)
	assert.Equal(t, 2, revisions[1].RevisionNumber)
	assert.Equal(t, 1, revisions[2].RevisionNumber)
	assert.Empty(t, revisions[1].Notes)
	assert.Equal(t, first.StoredPath, revisions[2].StoredPath)
}

func TestRecallUnknownRevision(t *testing.T) {
	v, _ := newTestVault(t)

	first := importBytes(t, v, []byte("content"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)

	_, err := v.Recall(context.Background(), first.DocumentID, 9, "tester")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecallRejectsTamperedContent(t *testing.T) {
	v, backend := newTestVault(t)

	first := importBytes(t, v, []byte("authentic"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)

	require.NoError(t, backend.Remove(first.StoredPath))
	_, err := backend.Write(first.StoredPath, bytes.NewReader([]byte("tampered")))
	require.NoError(t, err)

	_, err = v.Recall(context.Background(), first.DocumentID, 1, "tester")
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestExportMatchesContentHash(t *testing.T) {
	v, _ := newTestVault(t)
	content := []byte("exported program")

	first := importBytes(t, v, content, "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)

	destDir := t.TempDir()
	target, err := v.Export(context.Background(), first.DocumentID, 1, destDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(destDir, "Program1_rev1.txt"), target)

	exported, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, first.ContentHash, HashBytes(exported))
}

func TestExportDefaultsToCurrentRevision(t *testing.T) {
	v, _ := newTestVault(t)

	first := importBytes(t, v, []byte("old"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)
	second := importBytes(t, v, []byte("new"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)

	target, err := v.Export(context.Background(), first.DocumentID, 0, t.TempDir())
	require.NoError(t, err)

	exported, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, second.ContentHash, HashBytes(exported))
}

func TestExportMissingContentIsIntegrityError(t *testing.T) {
	v, backend := newTestVault(t)

	first := importBytes(t, v, []byte("content"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)
	require.NoError(t, backend.Remove(first.StoredPath))

	_, err := v.Export(context.Background(), first.DocumentID, 1, t.TempDir())
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestRevisionNumbersAreGapless(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	first := importBytes(t, v, []byte("rev one"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)
	for i := 2; i <= 5; i++ {
		importBytes(t, v, []byte(fmt.Sprintf("rev %d", i)), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)
	}

	revisions, err := v.Ledger().List(ctx, first.DocumentID)
	require.NoError(t, err)
	require.Len(t, revisions, 5)

	for i, rev := range revisions {
		assert.Equal(t, 5-i, rev.RevisionNumber)
	}
}

func TestDeactivateLeavesRevisionsAndContent(t *testing.T) {
	v, backend := newTestVault(t)
	ctx := context.Background()

	first := importBytes(t, v, []byte("one"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)
	importBytes(t, v, []byte("two"), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram)

	stored := backend.Len()

	require.NoError(t, v.Catalog().Deactivate(ctx, first.DocumentID))

	count, err := v.Ledger().Count(ctx, first.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, stored, backend.Len())

	docs, err := v.Catalog().List(ctx, "Line A", "Mill-1", "", "")
	require.NoError(t, err)
	assert.Empty(t, docs)

	// The document row itself survives deactivation.
	doc, err := v.Catalog().Get(ctx, first.DocumentID)
	require.NoError(t, err)
	assert.False(t, doc.Active)
}

// racingStore injects a competing revision right before every first append,
// simulating a concurrent writer taking the computed revision number.
type racingStore struct {
	store.MetadataStore
	races int
}

func (r *racingStore) CreateRevision(ctx context.Context, rev *models.Revision) error {
	if r.races > 0 {
		r.races--
		competitor := &models.Revision{
			DocumentID:       rev.DocumentID,
			RevisionNumber:   rev.RevisionNumber,
			StoredPath:       rev.StoredPath + ".competitor",
			OriginalFilename: "competitor.txt",
			ContentHash:      rev.ContentHash,
			CreatedBy:        "rival",
		}
		if err := r.MetadataStore.CreateRevision(ctx, competitor); err != nil {
			return err
		}
	}
	return r.MetadataStore.CreateRevision(ctx, rev)
}

func TestImportRetriesOnRevisionConflict(t *testing.T) {
	metadata := newTestStore(t)
	racing := &racingStore{MetadataStore: metadata, races: 1}
	backend := storage.NewMemoryBackend()
	v := New(racing, backend, log.NewNopLogger())
	ctx := context.Background()

	rev, err := v.Import(ctx, bytes.NewReader([]byte("contested")), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram, "tester")
	require.NoError(t, err)

	// The competitor took revision 1; the retry landed on revision 2.
	assert.Equal(t, 2, rev.RevisionNumber)

	count, err := v.Ledger().Count(ctx, rev.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// The first attempt's file was removed again; only the winning copy
	// remains in storage.
	exists, err := backend.Exists(rev.StoredPath)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, backend.Len())
}

// failingBackend refuses all writes.
type failingBackend struct {
	storage.Backend
}

func (f *failingBackend) Write(key string, r io.Reader) (int64, error) {
	return 0, errors.New("disk full")
}

func TestImportFailedCopyLeavesNoLedgerEntry(t *testing.T) {
	metadata := newTestStore(t)
	v := New(metadata, &failingBackend{Backend: storage.NewMemoryBackend()}, log.NewNopLogger())
	ctx := context.Background()

	_, err := v.Import(ctx, bytes.NewReader([]byte("content")), "Program1.txt", "Line A", "Mill-1", models.DocTypeProgram, "tester")
	require.Error(t, err)

	// The document identity was created, but no revision references
	// content that was never stored.
	doc, err := v.Catalog().Resolve(ctx, "Line A", "Mill-1", models.DocTypeProgram, "Program1", HashBytes([]byte("content")))
	if err == nil {
		count, countErr := v.Ledger().Count(ctx, doc.ID)
		require.NoError(t, countErr)
		assert.Zero(t, count)
	} else {
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestImportBatchReportsPerFileResults(t *testing.T) {
	v, _ := newTestVault(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "Program1.txt")
	require.NoError(t, os.WriteFile(good, []byte("good"), 0644))
	missing := filepath.Join(dir, "does-not-exist.txt")

	results := v.ImportBatch(context.Background(), []string{good, missing}, "Line A", "Mill-1", models.DocTypeProgram, "tester")
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Revision)
	assert.Equal(t, 1, results[0].Revision.RevisionNumber)

	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Revision)
}
