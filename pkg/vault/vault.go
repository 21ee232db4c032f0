package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/mwantia/toolvault/pkg/db/models"
	"github.com/mwantia/toolvault/pkg/db/store"
	"github.com/mwantia/toolvault/pkg/log"
	"github.com/mwantia/toolvault/pkg/storage"
)

// Vault orchestrates imports, recalls and exports against the metadata
// store and the storage backend. All operations run synchronously on the
// caller's goroutine.
type Vault struct {
	catalog *Catalog
	ledger  *Ledger
	backend storage.Backend
	log     log.LoggerService
	now     func() time.Time
}

// New creates a vault over the given metadata store and storage backend.
func New(metadata store.MetadataStore, backend storage.Backend, logger log.LoggerService) *Vault {
	return &Vault{
		catalog: NewCatalog(metadata),
		ledger:  NewLedger(metadata),
		backend: backend,
		log:     logger.Named("vault"),
		now:     time.Now,
	}
}

// Catalog exposes document identity lookups.
func (v *Vault) Catalog() *Catalog {
	return v.catalog
}

// Ledger exposes the revision history.
func (v *Vault) Ledger() *Ledger {
	return v.ledger
}

// storeRevision performs one allocate-copy-append cycle. When the ledger
// append fails the stored file is removed again, so storage never holds
// content without a matching revision row.
func (v *Vault) storeRevision(ctx context.Context, doc *models.Document, content io.Reader, originalFilename, contentHash, actor, notes string) (*models.Revision, error) {
	number, err := v.ledger.NextNumber(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	key := RevisionKey(doc.Line, doc.Machine, doc.DocType, doc.Name, number, v.now(), path.Ext(originalFilename))

	if _, err := v.backend.Write(key, content); err != nil {
		if errors.Is(err, storage.ErrKeyExists) {
			return nil, fmt.Errorf("storage key %s already taken: %w", key, ErrConflict)
		}
		return nil, fmt.Errorf("failed to store content: %w", err)
	}

	rev := &models.Revision{
		DocumentID:       doc.ID,
		RevisionNumber:   number,
		StoredPath:       key,
		OriginalFilename: originalFilename,
		ContentHash:      contentHash,
		CreatedBy:        actor,
		Notes:            notes,
	}

	if err := v.ledger.Append(ctx, rev); err != nil {
		if removeErr := v.backend.Remove(key); removeErr != nil {
			v.log.Error("Failed to remove orphaned content %s: %v", key, removeErr)
		}
		return nil, err
	}

	return rev, nil
}

// readVerified loads a revision's stored bytes and checks them against the
// hash recorded in the ledger.
func (v *Vault) readVerified(rev *models.Revision) ([]byte, error) {
	reader, err := v.backend.Open(rev.StoredPath)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, fmt.Errorf("stored content %s is missing: %w", rev.StoredPath, ErrIntegrity)
		}
		return nil, fmt.Errorf("failed to open stored content %s: %w", rev.StoredPath, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored content %s: %w", rev.StoredPath, err)
	}

	if hash := HashBytes(data); hash != rev.ContentHash {
		return nil, fmt.Errorf("stored content %s hashes to %s, ledger records %s: %w",
			rev.StoredPath, hash, rev.ContentHash, ErrIntegrity)
	}

	return data, nil
}

// retryOnConflict reruns the allocate-copy-append cycle for content that can
// be replayed from memory, re-reading the ledger head on each attempt.
func (v *Vault) retryOnConflict(ctx context.Context, doc *models.Document, content []byte, originalFilename, contentHash, actor, notes string) (*models.Revision, error) {
	var lastErr error

	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		rev, err := v.storeRevision(ctx, doc, bytes.NewReader(content), originalFilename, contentHash, actor, notes)
		if err == nil {
			return rev, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}
