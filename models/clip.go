package models

import (
	"time"

	"github.com/google/uuid"
)

// Clip is a stored clip row. Position keeps the editor's insertion order.
type Clip struct {
	ID            uuid.UUID `json:"id"`
	SourceVideoID uuid.UUID `json:"source_video_id"`
	Position      int       `json:"position"`
	StartTime     float64   `json:"start_time"`
	EndTime       float64   `json:"end_time"`
	Status        string    `json:"status"`
	StoragePath   *string   `json:"storage_path,omitempty"` // set once rendered
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const (
	ClipStatusDraft    = "draft"
	ClipStatusRendered = "rendered"
)
