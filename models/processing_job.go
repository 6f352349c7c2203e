package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProcessingJob tracks background work on a source video: clip persistence
// and renders.
type ProcessingJob struct {
	ID           uuid.UUID       `json:"id"`
	JobType      string          `json:"job_type"`
	EntityID     uuid.UUID       `json:"entity_id"`
	EntityType   string          `json:"entity_type"`
	Status       string          `json:"status"`
	ErrorMessage *string         `json:"error_message,omitempty"` // Nullable TEXT
	Metadata     json.RawMessage `json:"metadata,omitempty"`      // input and output details
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

const (
	JobStatusPending    = "PENDING"
	JobStatusProcessing = "PROCESSING"
	JobStatusCompleted  = "COMPLETED"
	JobStatusFailed     = "FAILED"
)
