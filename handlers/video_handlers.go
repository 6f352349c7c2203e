package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"videothingy/clipdeck/internal/jobs"
	"videothingy/clipdeck/models"
	"videothingy/clipdeck/utils"
)

// CreateSourceVideoRequest registers media already in storage.
type CreateSourceVideoRequest struct {
	Title         string                    `json:"title" validate:"required"`
	StoragePath   string                    `json:"storage_path" validate:"required"`
	Duration      *float64                  `json:"duration,omitempty" validate:"omitempty,gt=0"`
	Transcription *models.TranscriptionData `json:"transcription,omitempty"`
}

// CreateSourceVideo godoc
// @Summary Register a source video
// @Description Stores a source video record. Without a duration a probe job fills it in.
// @Tags videos
// @Accept  json
// @Produce  json
// @Param   video body CreateSourceVideoRequest true "Video to register"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /videos [post]
func (h *ApplicationHandler) CreateSourceVideo(c *fiber.Ctx) error {
	payload := new(CreateSourceVideoRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}

	v := &models.SourceVideo{
		Title:       utils.SanitizeInput(payload.Title),
		StoragePath: utils.SanitizeInput(payload.StoragePath),
		Duration:    payload.Duration,
		Status:      models.SourceStatusPending,
	}
	if v.Duration != nil {
		v.Status = models.SourceStatusReady
	}
	if payload.Transcription != nil {
		raw, err := json.Marshal(payload.Transcription)
		if err != nil {
			return h.respondErr(c, err)
		}
		v.Transcription = raw
	}
	if err := h.Store.CreateSourceVideo(c.Context(), v); err != nil {
		return h.respondErr(c, err)
	}

	log := h.Logger.WithFields(logrus.Fields{"video_id": v.ID, "storage_path": v.StoragePath})
	if v.Duration == nil && h.Prober != nil {
		job := &jobs.ProbeSourceJob{VideoID: v.ID, Path: v.StoragePath, Store: h.Store, Prober: h.Prober}
		if err := h.Jobs.SubmitJob(job); err != nil {
			log.WithError(err).Warn("could not queue duration probe")
		}
	}
	log.Info("source video registered")
	return utils.RespondWithJSON(c, fiber.StatusCreated, v)
}

// GetSourceVideo returns a stored source video.
func (h *ApplicationHandler) GetSourceVideo(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "video")
	if err != nil {
		return h.respondErr(c, err)
	}
	v, err := h.Store.GetSourceVideo(c.Context(), id)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, v)
}

// ListVideoClips returns the stored clip rows of a video.
func (h *ApplicationHandler) ListVideoClips(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "video")
	if err != nil {
		return h.respondErr(c, err)
	}
	if _, err := h.Store.GetSourceVideo(c.Context(), id); err != nil {
		return h.respondErr(c, err)
	}
	rows, err := h.Store.ListClips(c.Context(), id)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, rows)
}
