package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mwantia/toolvault/pkg/db/migrations"
	"github.com/mwantia/toolvault/pkg/db/models"
)

// SQLiteStore implements MetadataStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	LogLevel     logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed metadata store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Document operations

func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	return s.db.WithContext(ctx).Create(doc).Error
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *SQLiteStore) FindDocumentByName(ctx context.Context, line, machine string, docType models.DocType, name string) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).
		Where("line = ? AND machine = ? AND doc_type = ? AND name = ?", line, machine, docType, name).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *SQLiteStore) FindDocumentByHash(ctx context.Context, line, machine string, docType models.DocType, contentHash string) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Select("documents.*").
		Joins("JOIN revisions ON revisions.document_id = documents.id").
		Where("documents.line = ? AND documents.machine = ? AND documents.doc_type = ? AND revisions.content_hash = ?",
			line, machine, docType, contentHash).
		Order("documents.id").
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, line, machine string, docType models.DocType, search string) ([]models.DocumentSummary, error) {
	var docs []models.Document
	query := s.db.WithContext(ctx).
		Where("line = ? AND machine = ? AND active = ?", line, machine, true)

	if docType != "" {
		query = query.Where("doc_type = ?", docType)
	}
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	if err := query.Order("name").Find(&docs).Error; err != nil {
		return nil, err
	}

	summaries := make([]models.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summary := models.DocumentSummary{Document: doc}

		var head models.Revision
		err := s.db.WithContext(ctx).
			Where("document_id = ?", doc.ID).
			Order("revision_number DESC").
			First(&head).Error
		if err == nil {
			summary.CurrentRevision = head.RevisionNumber
			summary.RevisionCreatedAt = head.CreatedAt
			summary.RevisionCreatedBy = head.CreatedBy
		} else if !IsNotFound(err) {
			return nil, err
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (s *SQLiteStore) SetDocumentActive(ctx context.Context, id uint, active bool) error {
	result := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Revision operations

func (s *SQLiteStore) CreateRevision(ctx context.Context, rev *models.Revision) error {
	return s.db.WithContext(ctx).Create(rev).Error
}

func (s *SQLiteStore) GetRevision(ctx context.Context, documentID uint, revisionNumber int) (*models.Revision, error) {
	var rev models.Revision
	err := s.db.WithContext(ctx).
		Where("document_id = ? AND revision_number = ?", documentID, revisionNumber).
		First(&rev).Error
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (s *SQLiteStore) MaxRevisionNumber(ctx context.Context, documentID uint) (int, error) {
	var max int
	err := s.db.WithContext(ctx).
		Model(&models.Revision{}).
		Where("document_id = ?", documentID).
		Select("COALESCE(MAX(revision_number), 0)").
		Scan(&max).Error
	return max, err
}

func (s *SQLiteStore) ListRevisions(ctx context.Context, documentID uint) ([]models.Revision, error) {
	var revs []models.Revision
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("revision_number DESC").
		Find(&revs).Error
	return revs, err
}

func (s *SQLiteStore) CountRevisions(ctx context.Context, documentID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Revision{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}
