package interfaces

import (
	"context"
)

// IngestReport summarizes one corpus import.
type IngestReport struct {
	Total       int `json:"total"`
	Ingested    int `json:"ingested"`
	Skipped     int `json:"skipped"`
	TotalTokens int `json:"total_tokens"`
}

// IngestService loads a creator profile export into record storage,
// normalizing each video into a Record with its token count.
type IngestService interface {
	ImportFile(ctx context.Context, path string) (*IngestReport, error)
}
