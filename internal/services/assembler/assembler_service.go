package assembler

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
)

// Service assembles transcript context blocks under a token budget.
// Token costs come from the same counter used at ingest, so budget
// math is consistent with the stored per-record counts.
type Service struct {
	records   interfaces.RecordStorage
	snapshots interfaces.SnapshotSource
	counter   interfaces.TokenCounter
	logger    arbor.ILogger
}

// NewService creates the context assembler
func NewService(
	records interfaces.RecordStorage,
	snapshots interfaces.SnapshotSource,
	counter interfaces.TokenCounter,
	logger arbor.ILogger,
) interfaces.AssemblerService {
	return &Service{
		records:   records,
		snapshots: snapshots,
		counter:   counter,
		logger:    logger,
	}
}

// AssembleFull builds context from the whole corpus, newest videos
// first. When the corpus exceeds the budget the oldest videos fall off
// the end and the result is marked truncated.
func (s *Service) AssembleFull(ctx context.Context, budget int) (*interfaces.AssembledContext, error) {
	records, err := s.records.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: corpus is empty", models.ErrIndexUnavailable)
	}

	var sb strings.Builder
	var cited []string
	used := 0
	truncated := false

	for _, record := range records {
		block := recordBlock(record.ID, record.SourceText)
		// Stored token counts cover the source text; the header and
		// separators are counted here.
		cost := record.TokenCount + s.counter.Count(blockOverhead(record.ID))
		if used+cost > budget {
			truncated = true
			break
		}
		sb.WriteString(block)
		cited = append(cited, record.ID)
		used += cost
	}

	if len(cited) == 0 {
		return nil, fmt.Errorf("%w: budget of %d tokens fits no records", models.ErrInvalidRequest, budget)
	}

	if truncated {
		s.logger.Warn().
			Int("included", len(cited)).
			Int("total", len(records)).
			Int("budget", budget).
			Msg("Full context truncated, oldest videos dropped")
	}

	return &interfaces.AssembledContext{
		Text:           sb.String(),
		CitedRecordIDs: cited,
		TokensUsed:     used,
		Truncated:      truncated,
	}, nil
}

// AssembleRAG builds context from retrieved records in score order,
// using each record's best chunk text from the live snapshot.
func (s *Service) AssembleRAG(ctx context.Context, retrieved []models.RetrievedRecord, budget int) (*interfaces.AssembledContext, error) {
	snapshot := s.snapshots.Current()
	if snapshot == nil || snapshot.Empty() {
		return nil, fmt.Errorf("%w: no index snapshot is published", models.ErrIndexUnavailable)
	}

	entries := make(map[string]*models.IndexEntry, len(snapshot.Entries))
	for i := range snapshot.Entries {
		entries[snapshot.Entries[i].ChunkID] = &snapshot.Entries[i]
	}

	var sb strings.Builder
	var cited []string
	used := 0
	truncated := false

	for _, hit := range retrieved {
		entry, ok := entries[hit.ChunkID]
		if !ok {
			// Snapshot rotated between retrieval and assembly
			continue
		}
		block := recordBlock(hit.RecordID, entry.Text)
		cost := s.counter.Count(block)
		if used+cost > budget {
			truncated = true
			break
		}
		sb.WriteString(block)
		cited = append(cited, hit.RecordID)
		used += cost
	}

	if len(cited) == 0 {
		return nil, fmt.Errorf("%w: no retrieved chunks fit the %d token budget", models.ErrIndexUnavailable, budget)
	}

	return &interfaces.AssembledContext{
		Text:           sb.String(),
		CitedRecordIDs: cited,
		TokensUsed:     used,
		Truncated:      truncated,
	}, nil
}

// recordBlock formats one video's contribution to the context
func recordBlock(recordID, text string) string {
	return fmt.Sprintf("# Video %s\n%s\n\n", recordID, text)
}

// blockOverhead is the non-transcript portion of a record block
func blockOverhead(recordID string) string {
	return fmt.Sprintf("# Video %s\n\n\n", recordID)
}
