package vault

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/mwantia/toolvault/pkg/db/models"
	"github.com/mwantia/toolvault/pkg/db/store"
)

var nameReplacer = strings.NewReplacer("/", " ", "\\", " ", "_", " ")

// NormalizeName derives the logical document name from a filename: the
// extension is stripped, separators and underscores become single spaces,
// and internal whitespace is collapsed.
func NormalizeName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = nameReplacer.Replace(base)

	return strings.Join(strings.Fields(base), " ")
}

// Catalog resolves and maintains document identities. Each identity
// (line, machine, type, name) maps to exactly one document row.
type Catalog struct {
	store store.MetadataStore
}

// NewCatalog creates a catalog over the given metadata store.
func NewCatalog(metadata store.MetadataStore) *Catalog {
	return &Catalog{store: metadata}
}

// Resolve returns the document an import belongs to. Lookup order: exact
// match on the normalized name, then match on the content hash to catch a
// renamed but byte-identical file. Returns ErrNotFound when neither matches.
func (c *Catalog) Resolve(ctx context.Context, line, machine string, docType models.DocType, name, contentHash string) (*models.Document, error) {
	doc, err := c.store.FindDocumentByName(ctx, line, machine, docType, name)
	if err == nil {
		return doc, nil
	}
	if !store.IsNotFound(err) {
		return nil, err
	}

	doc, err = c.store.FindDocumentByHash(ctx, line, machine, docType, contentHash)
	if err == nil {
		return doc, nil
	}
	if store.IsNotFound(err) {
		return nil, fmt.Errorf("no document named %q in %s/%s: %w", name, line, machine, ErrNotFound)
	}

	return nil, err
}

// Create allocates a new document identity. Callers must Resolve first;
// creating an identity that already exists is an error.
func (c *Catalog) Create(ctx context.Context, line, machine string, docType models.DocType, name, createdBy string) (*models.Document, error) {
	if !docType.Valid() {
		return nil, fmt.Errorf("unknown document type %q", docType)
	}

	doc := &models.Document{
		Line:      line,
		Machine:   machine,
		DocType:   docType,
		Name:      name,
		CreatedBy: createdBy,
		Active:    true,
	}

	if err := c.store.CreateDocument(ctx, doc); err != nil {
		if store.IsDuplicateKey(err) {
			return nil, fmt.Errorf("document %q already exists in %s/%s: %w", name, line, machine, ErrConflict)
		}
		return nil, err
	}

	return doc, nil
}

// Get retrieves a document by id.
func (c *Catalog) Get(ctx context.Context, id uint) (*models.Document, error) {
	doc, err := c.store.GetDocument(ctx, id)
	if store.IsNotFound(err) {
		return nil, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	return doc, err
}

// List returns the active documents of a (line, machine) pair joined with
// their current revision. docType and search are optional filters.
func (c *Catalog) List(ctx context.Context, line, machine string, docType models.DocType, search string) ([]models.DocumentSummary, error) {
	return c.store.ListDocuments(ctx, line, machine, docType, search)
}

// Deactivate flips the document's active flag. Revisions and stored files
// are untouched; there is no inverse operation.
func (c *Catalog) Deactivate(ctx context.Context, id uint) error {
	err := c.store.SetDocumentActive(ctx, id, false)
	if store.IsNotFound(err) {
		return fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	return err
}
