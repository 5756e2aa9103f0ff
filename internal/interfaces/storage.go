package interfaces

import (
	"context"

	"github.com/voxlore/voxlore/internal/models"
)

// RecordStorage - interface for transcript record persistence
type RecordStorage interface {
	// CRUD operations
	SaveRecord(ctx context.Context, record *models.Record) error
	SaveRecords(ctx context.Context, records []*models.Record) error
	GetRecord(ctx context.Context, id string) (*models.Record, error)
	DeleteRecord(ctx context.Context, id string) error

	// List operations. ListRecords returns the corpus sorted by
	// Timestamp descending (newest first).
	ListRecords(ctx context.Context) ([]*models.Record, error)
	ListRecordIDs(ctx context.Context) ([]string, error)

	// Stats operations
	CountRecords(ctx context.Context) (int, error)
	TotalTokens(ctx context.Context) (int, error)

	// Bulk operations
	ClearAll(ctx context.Context) error
}

// IndexStorage - interface for embedding index snapshot persistence.
// Snapshots are written whole and replaced atomically, one per
// embedding model.
type IndexStorage interface {
	SaveSnapshot(snapshot *models.IndexSnapshot) error
	LoadSnapshot(modelName string) (*models.IndexSnapshot, error)
	SnapshotExists(modelName string) bool
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	RecordStorage() RecordStorage
	IndexStorage() IndexStorage
	Close() error
}
