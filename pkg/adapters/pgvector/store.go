// Package pgvector implements the reference store on PostgreSQL with the
// pgvector extension, accessed through gorm.
package pgvector

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
	pgv "github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ReferenceDocument is one embedded reference text.
type ReferenceDocument struct {
	Collection string     `gorm:"type:text;primaryKey"`
	DocID      string     `gorm:"type:text;primaryKey"`
	Content    string     `gorm:"type:text;not null"`
	Embedding  pgv.Vector `gorm:"type:vector"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

// TableName pins the table name regardless of gorm naming strategy.
func (ReferenceDocument) TableName() string {
	return "reference_documents"
}

// Store implements ports.ReferenceStore and ports.ReferenceIndexer.
type Store struct {
	db       *gorm.DB
	embedder ports.Embedder
}

// Open connects to PostgreSQL with gorm's own logging silenced.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// New creates a store over an open database.
func New(db *gorm.DB, embedder ports.Embedder) *Store {
	return &Store{db: db, embedder: embedder}
}

// Migrate enables the vector extension and creates the documents table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return classify("failed to enable pgvector extension", err)
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&ReferenceDocument{}); err != nil {
		return classify("failed to migrate reference documents", err)
	}
	return nil
}

// Index embeds docs and upserts them by (collection, doc id).
func (s *Store) Index(ctx context.Context, collection string, docs []ports.Document) error {
	if len(docs) == 0 {
		return nil
	}
	rows := make([]ReferenceDocument, 0, len(docs))
	for _, d := range docs {
		v, err := s.embedder.Embed(ctx, d.Text)
		if err != nil {
			return fmt.Errorf("failed to embed document %s: %w", d.ID, err)
		}
		rows = append(rows, ReferenceDocument{
			Collection: collection,
			DocID:      d.ID,
			Content:    d.Text,
			Embedding:  pgv.NewVector(v),
		})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "embedding", "updated_at"}),
		}).
		Create(&rows).Error
	if err != nil {
		return classify("failed to upsert reference documents", err)
	}
	return nil
}

// Count returns the number of documents in collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&ReferenceDocument{}).
		Where("collection = ?", collection).
		Count(&n).Error
	if err != nil {
		return 0, classify("failed to count reference documents", err)
	}
	return int(n), nil
}

type scoredRow struct {
	Content    string
	Similarity float64
}

// Search ranks documents by cosine similarity, 1 - (embedding <=> query).
func (s *Store) Search(ctx context.Context, collection, query string, topK int) ([]domain.Snippet, error) {
	if topK <= 0 {
		topK = ports.DefaultTopK
	}
	v, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVector := pgv.NewVector(v)

	var rows []scoredRow
	err = s.db.WithContext(ctx).
		Table(ReferenceDocument{}.TableName()).
		Select("content, 1 - (embedding <=> ?) AS similarity", queryVector).
		Where("collection = ?", collection).
		Order("similarity DESC").
		Order("doc_id").
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, classify("reference search", err)
	}

	snippets := make([]domain.Snippet, len(rows))
	for i, r := range rows {
		snippets[i] = domain.Snippet{Text: r.Content, Score: r.Similarity}
	}
	return snippets, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
