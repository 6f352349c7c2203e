package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"videothingy/clipdeck/internal/drag"
	"videothingy/clipdeck/internal/editor"
	"videothingy/clipdeck/utils"
)

// PointerRequest is a press on the timeline. Without clip_id it lands on the
// timeline body and scrubs.
type PointerRequest struct {
	ClipID string    `json:"clip_id" validate:"omitempty,uuid"`
	Handle string    `json:"handle" validate:"omitempty,oneof=start end"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Rect   drag.Rect `json:"rect"`
}

func (p PointerRequest) pointer() editor.Pointer {
	var id uuid.UUID
	if p.ClipID != "" {
		id = uuid.MustParse(p.ClipID)
	}
	return editor.Pointer{ClipID: id, Handle: drag.Handle(p.Handle), X: p.X, Y: p.Y, Rect: p.Rect}
}

type MoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type SecondsRequest struct {
	Seconds *float64 `json:"seconds" validate:"required"`
}

type RateRequest struct {
	Rate float64 `json:"rate" validate:"gt=0"`
}

// InputResponse reports whether an input was taken, with the view.
type InputResponse struct {
	Accepted bool        `json:"accepted"`
	View     editor.View `json:"view"`
}

// SelectResponse carries the transcript line to scroll into view, or -1.
type SelectResponse struct {
	Line int         `json:"line"`
	View editor.View `json:"view"`
}

func (h *ApplicationHandler) PointerDown(c *fiber.Ctx) error {
	return h.pointerStart(c, (*editor.Session).PointerDown)
}

func (h *ApplicationHandler) TouchStart(c *fiber.Ctx) error {
	return h.pointerStart(c, (*editor.Session).TouchStart)
}

func (h *ApplicationHandler) pointerStart(c *fiber.Ctx, fn func(*editor.Session, editor.Pointer) (bool, error)) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(PointerRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	if payload.ClipID != "" && payload.Handle == "" {
		return h.respondErr(c, errBadRequest{"handle is required with clip_id"})
	}
	ok, err := fn(s, payload.pointer())
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, InputResponse{Accepted: ok, View: s.View(true)})
}

func (h *ApplicationHandler) PointerMove(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(MoveRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	if err := s.PointerMove(payload.X); err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.View(true))
}

func (h *ApplicationHandler) PointerUp(c *fiber.Ctx) error {
	return h.sessionAction(c, (*editor.Session).PointerUp)
}

// TouchMove answers accepted=false when the page should scroll instead.
func (h *ApplicationHandler) TouchMove(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(MoveRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	ok, err := s.TouchMove(payload.X, payload.Y)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, InputResponse{Accepted: ok, View: s.View(true)})
}

// TouchEnd serves both touchend and touchcancel.
func (h *ApplicationHandler) TouchEnd(c *fiber.Ctx) error {
	return h.sessionAction(c, (*editor.Session).TouchEnd)
}

func (h *ApplicationHandler) TouchCancel(c *fiber.Ctx) error {
	return h.sessionAction(c, (*editor.Session).TouchCancel)
}

// Tick godoc
// @Summary Media clock update
// @Description Applies the player's current time. Ticks before media ready or during a drag are ignored.
// @Tags playback
// @Accept  json
// @Produce  json
// @Param   id path string true "Session ID"
// @Param   tick body SecondsRequest true "Played seconds"
// @Success 200 {object} utils.SuccessResponse
// @Router /sessions/{id}/playback/tick [post]
func (h *ApplicationHandler) Tick(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(SecondsRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	ok, err := s.Tick(*payload.Seconds)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, InputResponse{Accepted: ok, View: s.View(true)})
}

func (h *ApplicationHandler) Seek(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(SecondsRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	if err := s.Seek(*payload.Seconds); err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.View(true))
}

func (h *ApplicationHandler) Play(c *fiber.Ctx) error {
	return h.sessionAction(c, (*editor.Session).Play)
}

func (h *ApplicationHandler) Pause(c *fiber.Ctx) error {
	return h.sessionAction(c, (*editor.Session).Pause)
}

func (h *ApplicationHandler) SetPlaybackRate(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(RateRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	if err := s.SetPlaybackRate(payload.Rate); err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.View(true))
}

// SelectClip focuses a clip and seeks to its start unless it was the last
// one selected.
func (h *ApplicationHandler) SelectClip(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	clipID, err := parseID(c, "clipId", "clip")
	if err != nil {
		return h.respondErr(c, err)
	}
	line, err := s.SelectClip(clipID)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, SelectResponse{Line: line, View: s.View(true)})
}

func (h *ApplicationHandler) Deselect(c *fiber.Ctx) error {
	return h.sessionAction(c, (*editor.Session).Deselect)
}

// sessionAction runs a body-less session operation and returns the view.
func (h *ApplicationHandler) sessionAction(c *fiber.Ctx, fn func(*editor.Session) error) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := fn(s); err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.View(true))
}
