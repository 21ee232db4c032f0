package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mwantia/toolvault/pkg/db/models"
)

// MetadataStore defines the interface for database operations
type MetadataStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id uint) (*models.Document, error)
	FindDocumentByName(ctx context.Context, line, machine string, docType models.DocType, name string) (*models.Document, error)
	FindDocumentByHash(ctx context.Context, line, machine string, docType models.DocType, contentHash string) (*models.Document, error)
	ListDocuments(ctx context.Context, line, machine string, docType models.DocType, search string) ([]models.DocumentSummary, error)
	SetDocumentActive(ctx context.Context, id uint, active bool) error

	// Revision operations
	CreateRevision(ctx context.Context, rev *models.Revision) error
	GetRevision(ctx context.Context, documentID uint, revisionNumber int) (*models.Revision, error)
	MaxRevisionNumber(ctx context.Context, documentID uint) (int, error)
	ListRevisions(ctx context.Context, documentID uint) ([]models.Revision, error)
	CountRevisions(ctx context.Context, documentID uint) (int64, error)
}

// IsNotFound reports whether the error means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports whether the error is a unique-constraint violation.
// The glebarez driver does not always translate these into
// gorm.ErrDuplicatedKey, so the raw SQLite message is matched as well.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
