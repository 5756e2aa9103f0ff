package assembler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/models"
)

// wordCounter approximates tokens as whitespace-separated words
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }
func (wordCounter) EncodingName() string  { return "words" }

// mockRecordStorage serves a fixed record list
type mockRecordStorage struct {
	records []*models.Record
}

func (m *mockRecordStorage) SaveRecord(ctx context.Context, r *models.Record) error    { return nil }
func (m *mockRecordStorage) SaveRecords(ctx context.Context, r []*models.Record) error { return nil }
func (m *mockRecordStorage) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, models.ErrRecordNotFound
}
func (m *mockRecordStorage) DeleteRecord(ctx context.Context, id string) error { return nil }
func (m *mockRecordStorage) ListRecords(ctx context.Context) ([]*models.Record, error) {
	return m.records, nil
}
func (m *mockRecordStorage) ListRecordIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, len(m.records))
	for i, r := range m.records {
		ids[i] = r.ID
	}
	return ids, nil
}
func (m *mockRecordStorage) CountRecords(ctx context.Context) (int, error) { return len(m.records), nil }
func (m *mockRecordStorage) TotalTokens(ctx context.Context) (int, error) {
	total := 0
	for _, r := range m.records {
		total += r.TokenCount
	}
	return total, nil
}
func (m *mockRecordStorage) ClearAll(ctx context.Context) error { return nil }

// staticHolder serves a fixed snapshot
type staticHolder struct {
	snapshot *models.IndexSnapshot
}

func (h *staticHolder) Current() *models.IndexSnapshot { return h.snapshot }

// wordsOfCount builds text with exactly n counted words
func wordsOfCount(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "w"
	}
	return strings.Join(words, " ")
}

func newTestAssembler(records []*models.Record, snapshot *models.IndexSnapshot) *Service {
	counter := wordCounter{}
	out := make([]*models.Record, len(records))
	for i, r := range records {
		copied := *r
		copied.TokenCount = counter.Count(copied.SourceText)
		out[i] = &copied
	}
	svc := NewService(
		&mockRecordStorage{records: out},
		&staticHolder{snapshot: snapshot},
		counter,
		arbor.NewLogger(),
	)
	return svc.(*Service)
}

func TestAssembleFullIncludesEverythingUnderBudget(t *testing.T) {
	records := []*models.Record{
		{ID: "new", SourceText: wordsOfCount(10), Timestamp: 300},
		{ID: "mid", SourceText: wordsOfCount(10), Timestamp: 200},
		{ID: "old", SourceText: wordsOfCount(10), Timestamp: 100},
	}
	svc := newTestAssembler(records, nil)

	result, err := svc.AssembleFull(context.Background(), 1000)
	if err != nil {
		t.Fatalf("AssembleFull failed: %v", err)
	}

	if result.Truncated {
		t.Error("expected no truncation under a generous budget")
	}
	if len(result.CitedRecordIDs) != 3 {
		t.Fatalf("expected 3 cited records, got %d", len(result.CitedRecordIDs))
	}
	// Newest first
	if result.CitedRecordIDs[0] != "new" || result.CitedRecordIDs[2] != "old" {
		t.Errorf("expected newest-first order, got %v", result.CitedRecordIDs)
	}
	for _, id := range []string{"new", "mid", "old"} {
		if !strings.Contains(result.Text, "# Video "+id) {
			t.Errorf("context missing header for %s", id)
		}
	}
}

func TestAssembleFullDropsOldestWhenOverBudget(t *testing.T) {
	// Roughly 100/200/300 token records against a 250 budget: only the
	// newest fits once per-record overhead is paid.
	records := []*models.Record{
		{ID: "r100", SourceText: wordsOfCount(100), Timestamp: 300},
		{ID: "r200", SourceText: wordsOfCount(200), Timestamp: 200},
		{ID: "r300", SourceText: wordsOfCount(300), Timestamp: 100},
	}
	svc := newTestAssembler(records, nil)

	result, err := svc.AssembleFull(context.Background(), 250)
	if err != nil {
		t.Fatalf("AssembleFull failed: %v", err)
	}

	if !result.Truncated {
		t.Error("expected truncation")
	}
	if len(result.CitedRecordIDs) != 1 || result.CitedRecordIDs[0] != "r100" {
		t.Errorf("expected only the newest record, got %v", result.CitedRecordIDs)
	}
	if strings.Contains(result.Text, "# Video r300") {
		t.Error("oldest record should have been dropped")
	}
	if result.TokensUsed > 250 {
		t.Errorf("budget exceeded: %d > 250", result.TokensUsed)
	}
}

func TestAssembleFullEmptyCorpus(t *testing.T) {
	svc := newTestAssembler(nil, nil)

	_, err := svc.AssembleFull(context.Background(), 1000)
	if !errors.Is(err, models.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable for empty corpus, got %v", err)
	}
}

func TestAssembleRAGOrdersByRetrieval(t *testing.T) {
	snapshot := &models.IndexSnapshot{
		ModelName: "test-embed",
		Entries: []models.IndexEntry{
			{ChunkID: "a:0", RecordID: "a", Text: wordsOfCount(20)},
			{ChunkID: "b:0", RecordID: "b", Text: wordsOfCount(20)},
		},
	}
	svc := newTestAssembler(nil, snapshot)

	retrieved := []models.RetrievedRecord{
		{RecordID: "b", ChunkID: "b:0", Score: 0.9},
		{RecordID: "a", ChunkID: "a:0", Score: 0.5},
	}

	result, err := svc.AssembleRAG(context.Background(), retrieved, 1000)
	if err != nil {
		t.Fatalf("AssembleRAG failed: %v", err)
	}

	if len(result.CitedRecordIDs) != 2 {
		t.Fatalf("expected 2 cited records, got %d", len(result.CitedRecordIDs))
	}
	if result.CitedRecordIDs[0] != "b" {
		t.Errorf("expected retrieval order preserved, got %v", result.CitedRecordIDs)
	}
	if strings.Index(result.Text, "# Video b") > strings.Index(result.Text, "# Video a") {
		t.Error("context blocks out of retrieval order")
	}
}

func TestAssembleRAGStopsAtBudget(t *testing.T) {
	snapshot := &models.IndexSnapshot{
		ModelName: "test-embed",
		Entries: []models.IndexEntry{
			{ChunkID: "a:0", RecordID: "a", Text: wordsOfCount(30)},
			{ChunkID: "b:0", RecordID: "b", Text: wordsOfCount(30)},
		},
	}
	svc := newTestAssembler(nil, snapshot)

	retrieved := []models.RetrievedRecord{
		{RecordID: "a", ChunkID: "a:0", Score: 0.9},
		{RecordID: "b", ChunkID: "b:0", Score: 0.8},
	}

	// Budget fits one chunk block but not two
	result, err := svc.AssembleRAG(context.Background(), retrieved, 40)
	if err != nil {
		t.Fatalf("AssembleRAG failed: %v", err)
	}

	if !result.Truncated {
		t.Error("expected truncation")
	}
	if len(result.CitedRecordIDs) != 1 || result.CitedRecordIDs[0] != "a" {
		t.Errorf("expected only the top hit, got %v", result.CitedRecordIDs)
	}
}

func TestAssembleRAGNoSnapshot(t *testing.T) {
	svc := newTestAssembler(nil, nil)

	_, err := svc.AssembleRAG(context.Background(), []models.RetrievedRecord{
		{RecordID: "a", ChunkID: "a:0", Score: 0.9},
	}, 1000)
	if !errors.Is(err, models.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestAssembleRAGNothingFits(t *testing.T) {
	snapshot := &models.IndexSnapshot{
		ModelName: "test-embed",
		Entries: []models.IndexEntry{
			{ChunkID: "a:0", RecordID: "a", Text: wordsOfCount(100)},
		},
	}
	svc := newTestAssembler(nil, snapshot)

	_, err := svc.AssembleRAG(context.Background(), []models.RetrievedRecord{
		{RecordID: "a", ChunkID: "a:0", Score: 0.9},
	}, 5)
	if !errors.Is(err, models.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable when nothing fits, got %v", err)
	}
}
