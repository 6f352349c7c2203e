package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"videothingy/clipdeck/internal/editor"
	"videothingy/clipdeck/internal/store"
	"videothingy/clipdeck/models"
	"videothingy/clipdeck/utils"
)

type OpenSessionRequest struct {
	SourceVideoID string `json:"source_video_id" validate:"required,uuid"`
}

type MediaReadyRequest struct {
	Duration float64 `json:"duration" validate:"gt=0"`
}

// ChangeSourceRequest swaps the media under a session. Segments replace the
// transcript; omit them for media without one.
type ChangeSourceRequest struct {
	Source   string                     `json:"source" validate:"required"`
	Segments []models.TranscriptSegment `json:"segments"`
}

// OpenSession godoc
// @Summary Open an editing session
// @Description Loads the source video, its transcript and stored clips. The session becomes ready once the media duration is known.
// @Tags sessions
// @Accept  json
// @Produce  json
// @Param   session body OpenSessionRequest true "Source video"
// @Success 201 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /sessions [post]
func (h *ApplicationHandler) OpenSession(c *fiber.Ctx) error {
	payload := new(OpenSessionRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	videoID := uuid.MustParse(payload.SourceVideoID)

	ctx := c.Context()
	v, err := h.Store.GetSourceVideo(ctx, videoID)
	if err != nil {
		return h.respondErr(c, err)
	}
	td, err := models.ParseTranscription(v.Transcription)
	if err != nil {
		h.Logger.WithError(err).WithField("video_id", videoID).Warn("ignoring unreadable transcription")
		td = &models.TranscriptionData{}
	}
	rows, err := h.Store.ListClips(ctx, videoID)
	if err != nil {
		return h.respondErr(c, err)
	}

	s := editor.NewSession(videoID, v.StoragePath, td.Lines(), store.EditorClips(rows), h.sessionOptions())
	h.Sessions.Add(s)
	log := h.Logger.WithFields(logrus.Fields{"session_id": s.ID, "video_id": videoID})

	duration := v.Duration
	if duration == nil && h.Render.ProbeOnOpen && h.Prober != nil {
		d, err := h.Prober.ProbeDuration(ctx, v.StoragePath)
		if err != nil {
			log.WithError(err).Warn("probe on open failed")
		} else {
			duration = &d
			if err := h.Store.SetSourceDuration(ctx, videoID, d); err != nil {
				log.WithError(err).Warn("could not store probed duration")
			}
		}
	}
	if duration != nil {
		if err := s.MediaReady(*duration); err != nil {
			log.WithError(err).Warn("stored duration rejected")
		}
	}

	log.WithField("restored", len(rows)).Info("session opened")
	return utils.RespondWithJSON(c, fiber.StatusCreated, s.View(true))
}

// GetSession returns the session view. ?drain=true hands over queued player
// commands and events.
func (h *ApplicationHandler) GetSession(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.View(c.QueryBool("drain")))
}

func (h *ApplicationHandler) CloseSession(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "session")
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := h.Sessions.Close(id); err != nil {
		return h.respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MediaReady godoc
// @Summary Report loaded media
// @Description Sets the media duration and opens the ready gate. Stored clips that no longer fit are dropped.
// @Tags sessions
// @Accept  json
// @Produce  json
// @Param   id path string true "Session ID"
// @Param   media body MediaReadyRequest true "Duration in seconds"
// @Success 200 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /sessions/{id}/media [post]
func (h *ApplicationHandler) MediaReady(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(MediaReadyRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	if err := s.MediaReady(payload.Duration); err != nil {
		return h.respondErr(c, err)
	}
	if err := h.Store.SetSourceDuration(c.Context(), s.VideoID, payload.Duration); err != nil {
		h.Logger.WithError(err).WithField("video_id", s.VideoID).Warn("could not store duration")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.View(true))
}

// ChangeSource resets the session for new media.
func (h *ApplicationHandler) ChangeSource(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(ChangeSourceRequest)
	if err := parseBody(c, payload); err != nil {
		return h.respondErr(c, err)
	}
	td := &models.TranscriptionData{Segments: payload.Segments}
	if err := s.ChangeSource(payload.Source, td.Lines()); err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, s.View(true))
}

// RemoveVideo forwards the remove request; the session is closed.
func (h *ApplicationHandler) RemoveVideo(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	if err := s.RemoveVideo(); err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"session_id": s.ID,
		"video_id":   s.VideoID,
		"removed":    true,
	})
}
