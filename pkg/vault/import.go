package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mwantia/toolvault/pkg/db/models"
)

// maxAppendAttempts bounds the retries of the next-number/append sequence
// when a concurrent writer takes the same revision number.
const maxAppendAttempts = 3

// ImportResult reports the outcome for one file of a batch import.
type ImportResult struct {
	Source   string
	Revision *models.Revision
	Err      error
}

// Import ingests one source file for a (line, machine) pair. The content is
// fingerprinted, resolved against the catalog (creating a new document when
// neither name nor hash matches), copied into storage and recorded as the
// next revision. src must be seekable because hashing requires a full pass
// over the content before the copy.
func (v *Vault) Import(ctx context.Context, src io.ReadSeeker, filename, line, machine string, docType models.DocType, actor string) (*models.Revision, error) {
	if !docType.Valid() {
		return nil, fmt.Errorf("unknown document type %q", docType)
	}

	name := NormalizeName(filename)
	contentHash, err := HashReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", filename, err)
	}

	doc, err := v.catalog.Resolve(ctx, line, machine, docType, name, contentHash)
	if errors.Is(err, ErrNotFound) {
		doc, err = v.catalog.Create(ctx, line, machine, docType, name, actor)
	}
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind %s: %w", filename, err)
		}

		rev, err := v.storeRevision(ctx, doc, src, filename, contentHash, actor, "")
		if err == nil {
			v.log.Info("Imported %s as revision %d of document %d (%s)", filename, rev.RevisionNumber, doc.ID, doc.Name)
			return rev, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// ImportFile imports a single file from the local filesystem.
func (v *Vault) ImportFile(ctx context.Context, sourcePath, line, machine string, docType models.DocType, actor string) (*models.Revision, error) {
	file, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", sourcePath, err)
	}
	defer file.Close()

	return v.Import(ctx, file, filepath.Base(sourcePath), line, machine, docType, actor)
}

// ImportBatch imports each file independently. One file's failure never
// aborts the others; every outcome is reported to the caller.
func (v *Vault) ImportBatch(ctx context.Context, sourcePaths []string, line, machine string, docType models.DocType, actor string) []ImportResult {
	results := make([]ImportResult, 0, len(sourcePaths))

	for _, sourcePath := range sourcePaths {
		rev, err := v.ImportFile(ctx, sourcePath, line, machine, docType, actor)
		if err != nil {
			v.log.Error("Import of %s failed: %v", sourcePath, err)
		}
		results = append(results, ImportResult{
			Source:   sourcePath,
			Revision: rev,
			Err:      err,
		})
	}

	return results
}
