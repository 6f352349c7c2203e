package handlers

import (
	"github.com/gofiber/fiber/v2"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/editor"
	"videothingy/clipdeck/internal/timeinput"
	"videothingy/clipdeck/utils"
)

type AddClipRequest struct {
	StartTime *float64 `json:"start_time" validate:"required"`
	EndTime   *float64 `json:"end_time" validate:"required"`
}

type FieldEditRequest struct {
	Boundary string `json:"boundary" validate:"required,oneof=start end"`
	Field    string `json:"field" validate:"required,oneof=hours minutes seconds"`
	Value    string `json:"value"`
}

// ClipResponse pairs a changed clip with the refreshed session view.
type ClipResponse struct {
	Clip clips.Clip  `json:"clip"`
	View editor.View `json:"view"`
}

// FieldEditResponse is the outcome of one keystroke.
type FieldEditResponse struct {
	Result timeinput.Result `json:"result"`
	View   editor.View      `json:"view"`
}

// ListClips returns the session's clips in insertion order.
func (h *ApplicationHandler) ListClips(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.Clips())
}

// AddClip godoc
// @Summary Add a clip
// @Tags clips
// @Accept  json
// @Produce  json
// @Param   id path string true "Session ID"
// @Param   clip body AddClipRequest true "Clip bounds in seconds"
// @Success 201 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse "Media not ready"
// @Failure 422 {object} utils.ErrorResponse "Clip rejected"
// @Router /sessions/{id}/clips [post]
func (h *ApplicationHandler) AddClip(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(AddClipRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	clip, err := s.AddClip(*payload.StartTime, *payload.EndTime)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, ClipResponse{Clip: clip, View: s.View(true)})
}

// AddClipAtCurrentTime adds a default-length clip at the playhead.
func (h *ApplicationHandler) AddClipAtCurrentTime(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	clip, err := s.AddClipAtCurrentTime()
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, ClipResponse{Clip: clip, View: s.View(true)})
}

// UpdateClip applies a partial update; the whole clip is re-validated.
func (h *ApplicationHandler) UpdateClip(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	clipID, err := parseID(c, "clipId", "clip")
	if err != nil {
		return h.respondErr(c, err)
	}
	patch := new(clips.Patch)
	if err := parseBody(c, patch); err != nil {
		return h.respondErr(c, err)
	}
	clip, err := s.UpdateClip(clipID, *patch)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, ClipResponse{Clip: clip, View: s.View(true)})
}

// DeleteClip is idempotent: removing an unknown clip still answers 200.
func (h *ApplicationHandler) DeleteClip(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	clipID, err := parseID(c, "clipId", "clip")
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := s.RemoveClip(clipID); err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.View(true))
}

// EditField runs one text-field keystroke. A rejected range still answers
// 200; the result carries the message shown under the field.
func (h *ApplicationHandler) EditField(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	clipID, err := parseID(c, "clipId", "clip")
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(FieldEditRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	res, err := s.EditField(clipID, timeinput.Boundary(payload.Boundary), timeinput.Field(payload.Field), payload.Value)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, FieldEditResponse{Result: res, View: s.View(true)})
}

func (h *ApplicationHandler) BlurField(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	clipID, err := parseID(c, "clipId", "clip")
	if err != nil {
		return h.respondErr(c, err)
	}
	if _, err := s.BlurField(clipID); err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.View(true))
}
