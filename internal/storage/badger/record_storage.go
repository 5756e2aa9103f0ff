package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
)

// RecordStorage implements the RecordStorage interface for Badger
type RecordStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRecordStorage creates a new RecordStorage instance
func NewRecordStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RecordStorage {
	return &RecordStorage{
		db:     db,
		logger: logger,
	}
}

func (s *RecordStorage) SaveRecord(ctx context.Context, record *models.Record) error {
	if record.ID == "" {
		return fmt.Errorf("%w: record ID is required", models.ErrInvalidRequest)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

func (s *RecordStorage) SaveRecords(ctx context.Context, records []*models.Record) error {
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.SaveRecord(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (s *RecordStorage) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	var record models.Record
	if err := s.db.Store().Get(id, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: %s", models.ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &record, nil
}

func (s *RecordStorage) DeleteRecord(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Record{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// ListRecords returns all records sorted by Timestamp descending so the
// newest videos lead any assembled context. Ties sort by ID ascending
// to keep the order stable across runs.
func (s *RecordStorage) ListRecords(ctx context.Context) ([]*models.Record, error) {
	var records []models.Record
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Timestamp != records[j].Timestamp {
			return records[i].Timestamp > records[j].Timestamp
		}
		return records[i].ID < records[j].ID
	})

	result := make([]*models.Record, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

func (s *RecordStorage) ListRecordIDs(ctx context.Context) ([]string, error) {
	records, err := s.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.ID
	}
	return ids, nil
}

func (s *RecordStorage) CountRecords(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Record{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return int(count), nil
}

// TotalTokens sums the stored per-record token counts. Counts were made
// once at ingest, so this is a cheap scan with no tokenizer calls.
func (s *RecordStorage) TotalTokens(ctx context.Context) (int, error) {
	var records []models.Record
	if err := s.db.Store().Find(&records, nil); err != nil {
		return 0, fmt.Errorf("failed to scan records: %w", err)
	}
	total := 0
	for i := range records {
		total += records[i].TokenCount
	}
	return total, nil
}

func (s *RecordStorage) ClearAll(ctx context.Context) error {
	if err := s.db.Store().DeleteMatching(&models.Record{}, nil); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}
