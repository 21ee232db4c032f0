package models

import (
	"time"
)

// Revision is one immutable content snapshot of a document. The revision
// ledger is append-only; rows are never updated or deleted once written.
type Revision struct {
	ID             uint `gorm:"primaryKey"`
	DocumentID     uint `gorm:"not null;uniqueIndex:idx_document_revision"`
	RevisionNumber int  `gorm:"not null;uniqueIndex:idx_document_revision"`

	// Revision metadata
	StoredPath       string `gorm:"type:text;not null;uniqueIndex"`
	OriginalFilename string `gorm:"type:text;not null"`
	ContentHash      string `gorm:"type:text;not null;index:idx_revision_hash"`
	Notes            string `gorm:"type:text"`

	CreatedBy string `gorm:"type:text;not null"`
	CreatedAt time.Time

	// Relationships
	Document Document `gorm:"foreignKey:DocumentID;references:ID"`
}
