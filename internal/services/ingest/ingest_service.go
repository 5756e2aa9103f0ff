package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
)

// exportRecord mirrors one video entry in a profile export file.
type exportRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Transcript  struct {
		Text string `json:"text"`
	} `json:"transcript"`
	Captions []struct {
		Text string `json:"text"`
	} `json:"captions"`
	URL       string           `json:"url"`
	Timestamp int64            `json:"timestamp"`
	Stats     map[string]int64 `json:"stats"`
}

// exportFile tolerates both a bare array and an object wrapper.
type exportFile struct {
	Videos []exportRecord `json:"videos"`
}

// Service imports profile exports into record storage. Token counts
// are computed once here; everything downstream reuses them.
type Service struct {
	records interfaces.RecordStorage
	counter interfaces.TokenCounter
	logger  arbor.ILogger
}

// NewService creates the ingest service
func NewService(records interfaces.RecordStorage, counter interfaces.TokenCounter, logger arbor.ILogger) interfaces.IngestService {
	return &Service{
		records: records,
		counter: counter,
		logger:  logger,
	}
}

// ImportFile loads one export file. Videos with no usable text are
// skipped, everything else is upserted by ID so re-imports are
// idempotent.
func (s *Service) ImportFile(ctx context.Context, path string) (*interfaces.IngestReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}

	items, err := decodeExport(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse export file %s: %w", path, err)
	}

	report := &interfaces.IngestReport{Total: len(items)}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if item.ID == "" {
			report.Skipped++
			s.logger.Warn().Str("title", item.Title).Msg("Skipping video without ID")
			continue
		}

		record := s.normalize(&item)
		if record.SourceText == "" {
			report.Skipped++
			s.logger.Debug().Str("id", item.ID).Msg("Skipping video without text")
			continue
		}

		if err := s.records.SaveRecord(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to save record %s: %w", record.ID, err)
		}
		report.Ingested++
		report.TotalTokens += record.TokenCount
	}

	s.logger.Info().
		Str("path", path).
		Int("total", report.Total).
		Int("ingested", report.Ingested).
		Int("skipped", report.Skipped).
		Int("total_tokens", report.TotalTokens).
		Msg("Corpus import complete")

	return report, nil
}

// normalize converts an export entry to a Record with its token count
func (s *Service) normalize(item *exportRecord) *models.Record {
	var captionParts []string
	for _, caption := range item.Captions {
		text := strings.TrimSpace(caption.Text)
		if text != "" {
			captionParts = append(captionParts, text)
		}
	}
	captions := strings.Join(captionParts, "\n")

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = strings.TrimSpace(item.Description)
	}
	transcript := strings.TrimSpace(item.Transcript.Text)

	sourceText := models.BuildSourceText(title, transcript, captions)

	return &models.Record{
		ID:         item.ID,
		Title:      title,
		Transcript: transcript,
		Captions:   captions,
		SourceText: sourceText,
		URL:        item.URL,
		Timestamp:  item.Timestamp,
		Stats:      item.Stats,
		TokenCount: s.counter.Count(sourceText),
	}
}

// decodeExport accepts either a top-level array of videos or an object
// with a "videos" field.
func decodeExport(data []byte) ([]exportRecord, error) {
	var items []exportRecord
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}

	var wrapper exportFile
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Videos, nil
}
