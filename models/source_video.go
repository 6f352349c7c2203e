package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SourceVideo is the media a session edits.
type SourceVideo struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	StoragePath   string          `json:"storage_path"`
	Duration      *float64        `json:"duration,omitempty"` // seconds, nil until probed
	Status        string          `json:"status"`
	Transcription json.RawMessage `json:"transcription,omitempty"` // TranscriptionData
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

const (
	SourceStatusPending = "pending"
	SourceStatusReady   = "ready"
)
