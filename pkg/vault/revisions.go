package vault

import (
	"context"
	"fmt"

	"github.com/mwantia/toolvault/pkg/db/models"
	"github.com/mwantia/toolvault/pkg/db/store"
)

// Ledger is the append-only revision history of the vault's documents.
// Revision numbers per document form the gapless sequence 1..N; rows are
// never updated or deleted.
type Ledger struct {
	store store.MetadataStore
}

// NewLedger creates a ledger over the given metadata store.
func NewLedger(metadata store.MetadataStore) *Ledger {
	return &Ledger{store: metadata}
}

// NextNumber returns one plus the highest revision number recorded for the
// document, computed from the durable ledger so it survives restarts.
func (l *Ledger) NextNumber(ctx context.Context, documentID uint) (int, error) {
	max, err := l.store.MaxRevisionNumber(ctx, documentID)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Append records a new revision. The revision number must be exactly one
// greater than the current maximum; the unique (document_id, revision_number)
// index backs this check up under concurrent appends.
func (l *Ledger) Append(ctx context.Context, rev *models.Revision) error {
	if rev.RevisionNumber < 1 {
		return fmt.Errorf("revision numbers start at 1, got %d", rev.RevisionNumber)
	}

	max, err := l.store.MaxRevisionNumber(ctx, rev.DocumentID)
	if err != nil {
		return err
	}
	if rev.RevisionNumber != max+1 {
		return fmt.Errorf("revision %d of document %d is not next in sequence (head is %d): %w",
			rev.RevisionNumber, rev.DocumentID, max, ErrConflict)
	}

	if err := l.store.CreateRevision(ctx, rev); err != nil {
		if store.IsDuplicateKey(err) {
			return fmt.Errorf("revision %d of document %d was appended concurrently: %w",
				rev.RevisionNumber, rev.DocumentID, ErrConflict)
		}
		return err
	}

	return nil
}

// List returns the document's revisions, most recent first.
func (l *Ledger) List(ctx context.Context, documentID uint) ([]models.Revision, error) {
	return l.store.ListRevisions(ctx, documentID)
}

// Get retrieves one revision by document id and revision number.
func (l *Ledger) Get(ctx context.Context, documentID uint, revisionNumber int) (*models.Revision, error) {
	rev, err := l.store.GetRevision(ctx, documentID, revisionNumber)
	if store.IsNotFound(err) {
		return nil, fmt.Errorf("revision %d of document %d: %w", revisionNumber, documentID, ErrNotFound)
	}
	return rev, err
}

// Head returns the document's current revision, the one with the highest
// revision number. Returns ErrNotFound for a document with no revisions.
func (l *Ledger) Head(ctx context.Context, documentID uint) (*models.Revision, error) {
	max, err := l.store.MaxRevisionNumber(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if max == 0 {
		return nil, fmt.Errorf("document %d has no revisions: %w", documentID, ErrNotFound)
	}
	return l.Get(ctx, documentID, max)
}

// Count returns the number of revisions recorded for the document.
func (l *Ledger) Count(ctx context.Context, documentID uint) (int64, error) {
	return l.store.CountRevisions(ctx, documentID)
}
