package indexer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
	"golang.org/x/time/rate"
)

// Service builds the embedding index incrementally. Chunk IDs are
// deterministic, so the set difference between the current snapshot
// and the chunked corpus tells exactly which chunks need embedding and
// which are stale.
type Service struct {
	records  interfaces.RecordStorage
	index    interfaces.IndexStorage
	chunker  interfaces.ChunkerService
	embedder interfaces.EmbeddingService
	config   *common.IndexingConfig
	limiter  *rate.Limiter
	buildMu  sync.Mutex
	logger   arbor.ILogger
}

// NewService creates the index builder
func NewService(
	records interfaces.RecordStorage,
	index interfaces.IndexStorage,
	chunker interfaces.ChunkerService,
	embedder interfaces.EmbeddingService,
	config *common.IndexingConfig,
	logger arbor.ILogger,
) interfaces.IndexerService {
	perSecond := config.RatePerSecond
	if perSecond <= 0 {
		perSecond = 5
	}
	return &Service{
		records:  records,
		index:    index,
		chunker:  chunker,
		embedder: embedder,
		config:   config,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:   logger,
	}
}

// batchResult carries one embedding batch outcome back to the collector
type batchResult struct {
	chunks  []models.Chunk
	vectors [][]float32
	err     error
}

// Build runs one build pass. Concurrent calls serialize; the snapshot
// on disk is only replaced once the new one is complete.
func (s *Service) Build(ctx context.Context) (*models.IndexSnapshot, *interfaces.BuildReport, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := time.Now()
	modelName := s.embedder.ModelName()

	records, err := s.records.ListRecords(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	desired := make(map[string]models.Chunk)
	var desiredOrder []string
	for _, record := range records {
		for _, chunk := range s.chunker.ChunkRecord(record) {
			desired[chunk.ChunkID] = chunk
			desiredOrder = append(desiredOrder, chunk.ChunkID)
		}
	}

	// Entries from a snapshot built with a different model are never
	// reused; the whole corpus re-embeds.
	existing := make(map[string]models.IndexEntry)
	if snapshot, loadErr := s.index.LoadSnapshot(modelName); loadErr == nil && snapshot.ModelName == modelName {
		for _, entry := range snapshot.Entries {
			existing[entry.ChunkID] = entry
		}
	}

	var toEmbed []models.Chunk
	var entries []models.IndexEntry
	reused := 0
	for _, chunkID := range desiredOrder {
		chunk := desired[chunkID]
		if entry, ok := existing[chunkID]; ok {
			entries = append(entries, entry)
			reused++
			continue
		}
		toEmbed = append(toEmbed, chunk)
	}

	removed := 0
	for chunkID := range existing {
		if _, ok := desired[chunkID]; !ok {
			removed++
		}
	}

	s.logger.Info().
		Str("model", modelName).
		Int("records", len(records)).
		Int("chunks", len(desired)).
		Int("to_embed", len(toEmbed)).
		Int("reused", reused).
		Int("removed", removed).
		Msg("Starting index build")

	embedded, failed, embedErr := s.embedAll(ctx, toEmbed)
	if embedErr != nil && failed == len(toEmbed) && len(toEmbed) > 0 {
		return nil, nil, fmt.Errorf("index build failed, all %d embedding batches errored: %w", len(toEmbed), embedErr)
	}

	threshold := s.config.FailureFraction
	if threshold <= 0 {
		threshold = 0.2
	}
	if len(toEmbed) > 0 {
		fraction := float64(failed) / float64(len(toEmbed))
		if fraction > threshold {
			return nil, nil, fmt.Errorf("index build failed: %d of %d chunks failed to embed (%.0f%% > %.0f%% threshold): %w",
				failed, len(toEmbed), fraction*100, threshold*100, embedErr)
		}
	}

	entries = append(entries, embedded...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ChunkID < entries[j].ChunkID
	})

	snapshot := &models.IndexSnapshot{
		ModelName: modelName,
		Dimension: s.embedder.Dimension(),
		Entries:   entries,
		BuiltAt:   time.Now().UTC(),
	}

	if err := s.index.SaveSnapshot(snapshot); err != nil {
		return nil, nil, fmt.Errorf("failed to publish snapshot: %w", err)
	}

	report := &interfaces.BuildReport{
		TotalChunks:    len(desired),
		EmbeddedNew:    len(embedded),
		ReusedExisting: reused,
		Removed:        removed,
		Failed:         failed,
		DurationMs:     time.Since(start).Milliseconds(),
	}

	s.logger.Info().
		Str("model", modelName).
		Int("embedded_new", report.EmbeddedNew).
		Int("reused", report.ReusedExisting).
		Int("removed", report.Removed).
		Int("failed", report.Failed).
		Int64("duration_ms", report.DurationMs).
		Msg("Index build complete")

	return snapshot, report, nil
}

// embedAll runs embedding batches with bounded concurrency and the
// configured rate limit. Batch failures are counted, not fatal; the
// first error is kept for reporting.
func (s *Service) embedAll(ctx context.Context, chunks []models.Chunk) ([]models.IndexEntry, int, error) {
	if len(chunks) == 0 {
		return nil, 0, nil
	}

	batchSize := s.config.BatchSize
	if batchSize <= 0 {
		batchSize = 25
	}
	concurrency := s.config.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	var batches [][]models.Chunk
	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, chunks[i:end])
	}

	results := make(chan batchResult, len(batches))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, batch := range batches {
		wg.Add(1)
		go func(batch []models.Chunk) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := s.limiter.Wait(ctx); err != nil {
				results <- batchResult{chunks: batch, err: err}
				return
			}

			texts := make([]string, len(batch))
			for i, chunk := range batch {
				texts[i] = chunk.Text
			}

			vectors, err := s.embedder.EmbedBatch(ctx, texts)
			results <- batchResult{chunks: batch, vectors: vectors, err: err}
		}(batch)
	}

	wg.Wait()
	close(results)

	now := time.Now().UTC()
	var entries []models.IndexEntry
	var firstErr error
	failed := 0
	for result := range results {
		if result.err != nil {
			failed += len(result.chunks)
			if firstErr == nil {
				firstErr = result.err
			}
			s.logger.Warn().
				Err(result.err).
				Int("chunks", len(result.chunks)).
				Msg("Embedding batch failed")
			continue
		}
		for i, chunk := range result.chunks {
			entries = append(entries, models.IndexEntry{
				ChunkID:   chunk.ChunkID,
				RecordID:  chunk.RecordID,
				Text:      chunk.Text,
				Vector:    result.vectors[i],
				CreatedAt: now,
			})
		}
	}

	return entries, failed, firstErr
}
