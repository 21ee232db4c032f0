package vault

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/mwantia/toolvault/pkg/db/models"
)

// Export copies a revision's stored bytes, unmodified, into destDir as
// "<document name>_rev<number><ext>". The bytes are re-hashed during the
// copy; a mismatch or a missing stored file is an integrity error.
// revisionNumber 0 exports the document's current revision.
func (v *Vault) Export(ctx context.Context, documentID uint, revisionNumber int, destDir string) (string, error) {
	doc, err := v.catalog.Get(ctx, documentID)
	if err != nil {
		return "", err
	}

	var rev *models.Revision
	if revisionNumber <= 0 {
		rev, err = v.ledger.Head(ctx, documentID)
	} else {
		rev, err = v.ledger.Get(ctx, documentID, revisionNumber)
	}
	if err != nil {
		return "", err
	}

	content, err := v.readVerified(rev)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_rev%d%s", doc.Name, rev.RevisionNumber, path.Ext(rev.StoredPath))
	target := filepath.Join(destDir, filename)

	if err := os.WriteFile(target, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write export %s: %w", target, err)
	}

	v.log.Info("Exported revision %d of document %d to %s", rev.RevisionNumber, documentID, target)
	return target, nil
}
