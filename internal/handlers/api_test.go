package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voxlore/voxlore/internal/models"
)

// stubRecordStorage serves a fixed record count
type stubRecordStorage struct {
	count    int
	countErr error
}

func (s *stubRecordStorage) SaveRecord(ctx context.Context, r *models.Record) error    { return nil }
func (s *stubRecordStorage) SaveRecords(ctx context.Context, r []*models.Record) error { return nil }
func (s *stubRecordStorage) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	return nil, models.ErrRecordNotFound
}
func (s *stubRecordStorage) DeleteRecord(ctx context.Context, id string) error { return nil }
func (s *stubRecordStorage) ListRecords(ctx context.Context) ([]*models.Record, error) {
	return nil, nil
}
func (s *stubRecordStorage) ListRecordIDs(ctx context.Context) ([]string, error) { return nil, nil }
func (s *stubRecordStorage) CountRecords(ctx context.Context) (int, error) {
	return s.count, s.countErr
}
func (s *stubRecordStorage) TotalTokens(ctx context.Context) (int, error) { return 0, nil }
func (s *stubRecordStorage) ClearAll(ctx context.Context) error           { return nil }

// stubSnapshotSource serves a fixed snapshot
type stubSnapshotSource struct {
	snapshot *models.IndexSnapshot
}

func (s *stubSnapshotSource) Current() *models.IndexSnapshot { return s.snapshot }

func TestHealthHandler(t *testing.T) {
	handler := NewAPIHandler(
		&stubRecordStorage{count: 12},
		&stubSnapshotSource{snapshot: &models.IndexSnapshot{
			ModelName: "test-embed",
			Entries:   []models.IndexEntry{{ChunkID: "a:0", RecordID: "a"}},
		}},
	)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	handler.HealthHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	if body["records"] != float64(12) {
		t.Errorf("expected 12 records, got %v", body["records"])
	}
	if body["index_ready"] != true {
		t.Errorf("expected index_ready true, got %v", body["index_ready"])
	}
}

func TestHealthHandlerNoIndex(t *testing.T) {
	handler := NewAPIHandler(&stubRecordStorage{count: 3}, &stubSnapshotSource{})

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	handler.HealthHandler(w, req)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["index_ready"] != false {
		t.Errorf("expected index_ready false without a snapshot, got %v", body["index_ready"])
	}
}

func TestHealthHandlerDegraded(t *testing.T) {
	handler := NewAPIHandler(
		&stubRecordStorage{countErr: errors.New("database closed")},
		&stubSnapshotSource{},
	)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	handler.HealthHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("expected degraded status, got %v", body["status"])
	}
}

func TestVersionHandler(t *testing.T) {
	handler := NewAPIHandler(&stubRecordStorage{}, &stubSnapshotSource{})

	req := httptest.NewRequest("GET", "/api/version", nil)
	w := httptest.NewRecorder()
	handler.VersionHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"version", "build", "git_commit"} {
		if _, ok := body[key]; !ok {
			t.Errorf("version response missing %q", key)
		}
	}
}

func TestNotFoundHandler(t *testing.T) {
	handler := NewAPIHandler(&stubRecordStorage{}, &stubSnapshotSource{})

	req := httptest.NewRequest("GET", "/api/nope", nil)
	w := httptest.NewRecorder()
	handler.NotFoundHandler(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["path"] != "/api/nope" {
		t.Errorf("expected the path echoed back, got %v", body["path"])
	}
}
