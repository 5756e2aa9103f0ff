package retriever

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
)

// Service ranks records by blending embedding similarity with lexical
// term overlap. For a fixed snapshot and question the output is fully
// deterministic: score ties break on ChunkID.
type Service struct {
	snapshots   interfaces.SnapshotSource
	embedder    interfaces.EmbeddingService
	blendWeight float64
	defaultTopK int
	logger      arbor.ILogger
}

// scoredChunk pairs an index entry with its blended score
type scoredChunk struct {
	entry *models.IndexEntry
	score float64
}

// NewService creates the hybrid retriever
func NewService(
	snapshots interfaces.SnapshotSource,
	embedder interfaces.EmbeddingService,
	config *common.RetrievalConfig,
	logger arbor.ILogger,
) interfaces.RetrieverService {
	weight := config.BlendWeight
	if weight <= 0 || weight > 1 {
		weight = 0.85
	}
	topK := config.DefaultTopK
	if topK <= 0 {
		topK = 40
	}
	return &Service{
		snapshots:   snapshots,
		embedder:    embedder,
		blendWeight: weight,
		defaultTopK: topK,
		logger:      logger,
	}
}

// Retrieve returns up to topK records, each represented by its best
// scoring chunk.
func (s *Service) Retrieve(ctx context.Context, question string, topK int) ([]models.RetrievedRecord, error) {
	snapshot := s.snapshots.Current()
	if snapshot == nil || snapshot.Empty() {
		return nil, fmt.Errorf("%w: no index snapshot is published", models.ErrIndexUnavailable)
	}

	// The query must be embedded with the same model the index was
	// built with or the similarity space is meaningless.
	if snapshot.ModelName != s.embedder.ModelName() {
		return nil, fmt.Errorf("%w: index built with %s, query embedder is %s",
			models.ErrModelMismatch, snapshot.ModelName, s.embedder.ModelName())
	}

	if topK <= 0 {
		topK = s.defaultTopK
	}

	vectors, err := s.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	queryVector := vectors[0]

	queryTerms := termSet(question)

	scored := make([]scoredChunk, 0, len(snapshot.Entries))
	for i := range snapshot.Entries {
		entry := &snapshot.Entries[i]
		cos := cosineSimilarity(queryVector, entry.Vector)
		lex := lexicalOverlap(queryTerms, entry.Text)
		scored = append(scored, scoredChunk{
			entry: entry,
			score: s.blendWeight*cos + (1-s.blendWeight)*lex,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].entry.ChunkID < scored[j].entry.ChunkID
	})

	// One result per record: the first (highest scoring) chunk wins
	seen := make(map[string]struct{})
	var results []models.RetrievedRecord
	for _, sc := range scored {
		if _, ok := seen[sc.entry.RecordID]; ok {
			continue
		}
		seen[sc.entry.RecordID] = struct{}{}
		results = append(results, models.RetrievedRecord{
			RecordID: sc.entry.RecordID,
			ChunkID:  sc.entry.ChunkID,
			Score:    sc.score,
		})
		if len(results) == topK {
			break
		}
	}

	s.logger.Debug().
		Int("entries", len(snapshot.Entries)).
		Int("results", len(results)).
		Int("top_k", topK).
		Msg("Retrieval complete")

	return results, nil
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Zero vectors and length mismatches score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// lexicalOverlap scores the fraction of distinct question terms that
// appear in the chunk text. Always in [0,1].
func lexicalOverlap(queryTerms map[string]struct{}, text string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	chunkTerms := termSet(text)
	matched := 0
	for term := range queryTerms {
		if _, ok := chunkTerms[term]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}

// termSet lowercases and splits text on non-alphanumeric runes
func termSet(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, term := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		terms[term] = struct{}{}
	}
	return terms
}
