package vault

import (
	"context"

	"github.com/mwantia/toolvault/pkg/db/models"
)

// RecallNotes is recorded on every revision created by a recall.
const RecallNotes = "Recalled previous revision"

// Recall materializes an older revision's content as the document's new
// current revision. The stored bytes are verified against the ledger hash
// before anything is written; existing revisions are never touched.
func (v *Vault) Recall(ctx context.Context, documentID uint, sourceRevision int, actor string) (*models.Revision, error) {
	doc, err := v.catalog.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	source, err := v.ledger.Get(ctx, documentID, sourceRevision)
	if err != nil {
		return nil, err
	}

	content, err := v.readVerified(source)
	if err != nil {
		return nil, err
	}

	rev, err := v.retryOnConflict(ctx, doc, content, source.OriginalFilename, source.ContentHash, actor, RecallNotes)
	if err != nil {
		return nil, err
	}

	v.log.Info("Recalled revision %d of document %d as revision %d", sourceRevision, documentID, rev.RevisionNumber)
	return rev, nil
}
