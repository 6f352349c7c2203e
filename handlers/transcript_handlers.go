package handlers

import (
	"github.com/gofiber/fiber/v2"

	"videothingy/clipdeck/internal/editor"
	"videothingy/clipdeck/internal/transcript"
	"videothingy/clipdeck/utils"
)

type LineRequest struct {
	Line *int `json:"line" validate:"required,min=0"`
}

type LineTouchRequest struct {
	Line *int    `json:"line" validate:"required,min=0"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// TranscriptResponse lists the lines of the session's transcript.
type TranscriptResponse struct {
	Lines []transcript.Line `json:"lines"`
}

func (h *ApplicationHandler) GetTranscript(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	lines := s.Transcript()
	if lines == nil {
		lines = []transcript.Line{}
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, TranscriptResponse{Lines: lines})
}

func (h *ApplicationHandler) BeginSelection(c *fiber.Ctx) error {
	return h.lineAction(c, (*editor.Session).BeginSelection)
}

func (h *ApplicationHandler) ExtendSelection(c *fiber.Ctx) error {
	return h.lineAction(c, (*editor.Session).ExtendSelection)
}

// TruncateSelection is the ctrl/cmd-click on a line.
func (h *ApplicationHandler) TruncateSelection(c *fiber.Ctx) error {
	return h.lineAction(c, (*editor.Session).TruncateSelection)
}

// SweepStart is a mouse press on a line; SweepEnter follows the pointer
// over further lines until SweepEnd.
func (h *ApplicationHandler) SweepStart(c *fiber.Ctx) error {
	return h.lineAction(c, (*editor.Session).SweepStart)
}

func (h *ApplicationHandler) SweepEnter(c *fiber.Ctx) error {
	return h.lineAction(c, (*editor.Session).SweepEnter)
}

func (h *ApplicationHandler) SweepEnd(c *fiber.Ctx) error {
	return h.sessionAction(c, (*editor.Session).SweepEnd)
}

// ClickLine seeks to the start of a line.
func (h *ApplicationHandler) ClickLine(c *fiber.Ctx) error {
	return h.lineAction(c, (*editor.Session).ClickLine)
}

func (h *ApplicationHandler) ClearSelection(c *fiber.Ctx) error {
	return h.sessionAction(c, (*editor.Session).ClearSelection)
}

// CommitSelection godoc
// @Summary Create a clip from selected transcript lines
// @Description Derives [start, end] from the selected lines and adds the clip. The selection is cleared either way.
// @Tags transcript
// @Produce  json
// @Param   id path string true "Session ID"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse "Empty or broken selection"
// @Failure 422 {object} utils.ErrorResponse "Derived clip rejected"
// @Router /sessions/{id}/transcript/commit [post]
func (h *ApplicationHandler) CommitSelection(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	clip, err := s.CommitSelection()
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, ClipResponse{Clip: clip, View: s.View(true)})
}

func (h *ApplicationHandler) TranscriptTouchStart(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(LineTouchRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	if err := s.TranscriptTouchStart(*payload.Line, payload.X, payload.Y); err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.View(true))
}

func (h *ApplicationHandler) TranscriptTouchMove(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(LineTouchRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	ok, err := s.TranscriptTouchMove(*payload.Line, payload.X, payload.Y)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, InputResponse{Accepted: ok, View: s.View(true)})
}

func (h *ApplicationHandler) TranscriptTouchEnd(c *fiber.Ctx) error {
	return h.sessionAction(c, (*editor.Session).TranscriptTouchEnd)
}

// SearchTranscript runs ?q= over the lines, case-insensitively.
func (h *ApplicationHandler) SearchTranscript(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	res, err := s.Search(c.Query("q"))
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, res)
}

func (h *ApplicationHandler) NextMatch(c *fiber.Ctx) error {
	return h.stepSearch(c, true)
}

func (h *ApplicationHandler) PrevMatch(c *fiber.Ctx) error {
	return h.stepSearch(c, false)
}

func (h *ApplicationHandler) stepSearch(c *fiber.Ctx, forward bool) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	res, err := s.StepSearch(forward)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, res)
}

func (h *ApplicationHandler) lineAction(c *fiber.Ctx, fn func(*editor.Session, int) error) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(LineRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	if err := fn(s, *payload.Line); err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.View(true))
}

