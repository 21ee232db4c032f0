package models

import (
	"time"
)

// DocType distinguishes the two kinds of machine documents kept in the vault.
type DocType string

const (
	DocTypeProgram DocType = "program"
	DocTypePrint   DocType = "print"
)

// Valid reports whether the value is one of the known document types.
func (t DocType) Valid() bool {
	return t == DocTypeProgram || t == DocTypePrint
}

// Document represents a logical versioned artifact for a (line, machine) pair.
// A document is created once and never physically deleted; deactivation only
// flips the Active flag.
type Document struct {
	ID      uint    `gorm:"primaryKey"`
	Line    string  `gorm:"type:text;not null;uniqueIndex:idx_doc_identity"`
	Machine string  `gorm:"type:text;not null;uniqueIndex:idx_doc_identity"`
	DocType DocType `gorm:"type:text;not null;uniqueIndex:idx_doc_identity"`
	Name    string  `gorm:"type:text;not null;uniqueIndex:idx_doc_identity"`

	CreatedBy string `gorm:"type:text;not null"`
	Active    bool   `gorm:"default:true"`

	// Timestamps
	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Revisions []Revision `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// DocumentSummary is a document joined with its current (highest-numbered)
// revision, as shown in history listings.
type DocumentSummary struct {
	Document
	CurrentRevision   int
	RevisionCreatedAt time.Time
	RevisionCreatedBy string
}
