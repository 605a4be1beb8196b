package entity

import (
	"encoding/json"

	"github.com/google/uuid"
)

// VideoAnalysisMessage is the inbound message from the video.analysis queue.
// Parameters carries the optional per-request settings document produced by
// the upload frontend; it is parsed and validated by the use case.
type VideoAnalysisMessage struct {
	JobID      uuid.UUID       `json:"job_id"`
	UserID     string          `json:"user_id"`
	VideoKey   string          `json:"video_key"`
	FileSize   int64           `json:"file_size"`
	UserEmail  string          `json:"user_email"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

// AnalysisStatusMessage is the outbound message published to the video.status queue.
type AnalysisStatusMessage struct {
	JobID        uuid.UUID `json:"job_id"`
	UserID       string    `json:"user_id"`
	Status       JobStatus `json:"status"`
	VideoKey     string    `json:"video_key"`
	MetadataKey  string    `json:"metadata_key,omitempty"`
	SlideCount   int       `json:"slide_count,omitempty"`
	Algorithm    string    `json:"algorithm,omitempty"`
	Duration     float64   `json:"duration_seconds,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Attempt      int       `json:"attempt"`
	MaxAttempts  int       `json:"max_attempts"`
}
