package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
)

// FileStore persists index snapshots as one JSON file per embedding
// model. Writes go to a temp file in the same directory and are
// published with an atomic rename, so readers always see either the
// previous snapshot or the new one, never a partial file.
type FileStore struct {
	dir    string
	logger arbor.ILogger
}

// NewFileStore creates a snapshot store rooted at dir
func NewFileStore(dir string, logger arbor.ILogger) interfaces.IndexStorage {
	return &FileStore{
		dir:    dir,
		logger: logger,
	}
}

func (s *FileStore) SaveSnapshot(snapshot *models.IndexSnapshot) error {
	if snapshot.ModelName == "" {
		return fmt.Errorf("snapshot model name is required")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	target := s.snapshotPath(snapshot.ModelName)

	tmp, err := os.CreateTemp(s.dir, "snapshot-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}

	s.logger.Info().
		Str("model", snapshot.ModelName).
		Int("entries", len(snapshot.Entries)).
		Str("path", target).
		Msg("Index snapshot published")

	return nil
}

func (s *FileStore) LoadSnapshot(modelName string) (*models.IndexSnapshot, error) {
	data, err := os.ReadFile(s.snapshotPath(modelName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no snapshot for model %s", models.ErrIndexUnavailable, modelName)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot models.IndexSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	if snapshot.ModelName != modelName {
		return nil, fmt.Errorf("%w: snapshot built with %s, requested %s",
			models.ErrModelMismatch, snapshot.ModelName, modelName)
	}

	return &snapshot, nil
}

func (s *FileStore) SnapshotExists(modelName string) bool {
	_, err := os.Stat(s.snapshotPath(modelName))
	return err == nil
}

func (s *FileStore) snapshotPath(modelName string) string {
	// Model names can carry characters unfit for filenames
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, modelName)
	return filepath.Join(s.dir, fmt.Sprintf("index-%s.json", safe))
}
