package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store := NewFileStore(t.TempDir(), arbor.NewLogger())
	return store.(*FileStore)
}

func testSnapshot(model string, entries int) *models.IndexSnapshot {
	snapshot := &models.IndexSnapshot{
		ModelName: model,
		Dimension: 3,
		BuiltAt:   time.Now().UTC().Truncate(time.Second),
	}
	for i := 0; i < entries; i++ {
		snapshot.Entries = append(snapshot.Entries, models.IndexEntry{
			ChunkID:  models.ChunkID("vid", i*100),
			RecordID: "vid",
			Text:     "some transcript text",
			Vector:   []float32{1, 0, 0},
		})
	}
	return snapshot
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	saved := testSnapshot("test-embed", 3)
	if err := store.SaveSnapshot(saved); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := store.LoadSnapshot("test-embed")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.ModelName != saved.ModelName || loaded.Dimension != saved.Dimension {
		t.Errorf("metadata mismatch: %s/%d", loaded.ModelName, loaded.Dimension)
	}
	if len(loaded.Entries) != len(saved.Entries) {
		t.Fatalf("entry count mismatch: %d vs %d", len(loaded.Entries), len(saved.Entries))
	}
	for i := range loaded.Entries {
		if loaded.Entries[i].ChunkID != saved.Entries[i].ChunkID {
			t.Errorf("entry %d chunk ID mismatch", i)
		}
		if len(loaded.Entries[i].Vector) != 3 {
			t.Errorf("entry %d lost its vector", i)
		}
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadSnapshot("never-built")
	if !errors.Is(err, models.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestSnapshotExists(t *testing.T) {
	store := newTestStore(t)

	if store.SnapshotExists("test-embed") {
		t.Error("snapshot should not exist before save")
	}
	if err := store.SaveSnapshot(testSnapshot("test-embed", 1)); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if !store.SnapshotExists("test-embed") {
		t.Error("snapshot should exist after save")
	}
}

func TestSaveOverwritesAtomically(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveSnapshot(testSnapshot("test-embed", 1)); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := store.SaveSnapshot(testSnapshot("test-embed", 5)); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := store.LoadSnapshot("test-embed")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(loaded.Entries) != 5 {
		t.Errorf("expected the newer snapshot, got %d entries", len(loaded.Entries))
	}

	// No temp files left behind
	leftovers, err := filepath.Glob(filepath.Join(store.dir, "*.tmp"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files not cleaned up: %v", leftovers)
	}
}

func TestSnapshotsIsolatedPerModel(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveSnapshot(testSnapshot("model-a", 2)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.SaveSnapshot(testSnapshot("model-b", 4)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	a, err := store.LoadSnapshot("model-a")
	if err != nil {
		t.Fatalf("load model-a failed: %v", err)
	}
	b, err := store.LoadSnapshot("model-b")
	if err != nil {
		t.Fatalf("load model-b failed: %v", err)
	}
	if len(a.Entries) != 2 || len(b.Entries) != 4 {
		t.Errorf("snapshots bled across models: %d/%d", len(a.Entries), len(b.Entries))
	}
}

func TestModelNameSanitizedInPath(t *testing.T) {
	store := newTestStore(t)

	// Slashes and colons must not escape the index directory
	if err := store.SaveSnapshot(testSnapshot("org/model:v2", 1)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.LoadSnapshot("org/model:v2")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ModelName != "org/model:v2" {
		t.Errorf("model name mangled: %s", loaded.ModelName)
	}

	entries, err := os.ReadDir(store.dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one snapshot file, got %d", len(entries))
	}
	if entries[0].Name() != "index-org_model_v2.json" {
		t.Errorf("unexpected snapshot filename %q", entries[0].Name())
	}
}

func TestSaveRequiresModelName(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveSnapshot(&models.IndexSnapshot{}); err == nil {
		t.Error("expected error saving a snapshot without a model name")
	}
}
