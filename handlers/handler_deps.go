package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"videothingy/clipdeck/config"
	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/editor"
	"videothingy/clipdeck/internal/jobs"
	"videothingy/clipdeck/internal/playback"
	"videothingy/clipdeck/internal/renderclient"
	"videothingy/clipdeck/internal/store"
	"videothingy/clipdeck/internal/timeinput"
	"videothingy/clipdeck/internal/transcript"
	"videothingy/clipdeck/utils"
)

// Renderer hands clips to the remote render pipeline.
type Renderer interface {
	RenderClips(ctx context.Context, req renderclient.Request) (*renderclient.Result, error)
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Sessions  *editor.Registry
	Store     store.Store
	Jobs      jobs.Submitter
	Persister *jobs.ClipPersister
	Renderer  Renderer       // nil renders locally with Extractor
	Extractor jobs.Extractor // local ffmpeg
	Prober    jobs.Prober    // nil disables probing
	Editor    config.EditorConfig
	Render    config.RenderConfig
	Logger    *logrus.Logger
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(st store.Store, queue jobs.Submitter, logger *logrus.Logger, cfg config.Config) *ApplicationHandler {
	return &ApplicationHandler{
		Sessions:  editor.NewRegistry(),
		Store:     st,
		Jobs:      queue,
		Persister: jobs.NewClipPersister(st, queue, logger.WithField("component", "handlers")),
		Editor:    cfg.Editor,
		Render:    cfg.Render,
		Logger:    logger,
	}
}

var validate = validator.New()

// errBadRequest marks input the client got wrong.
type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

// parseBody decodes and validates the JSON body into payload.
func parseBody(c *fiber.Ctx, payload interface{}) error {
	if err := c.BodyParser(payload); err != nil {
		return errBadRequest{fmt.Sprintf("Invalid request body: %v", err)}
	}
	return validate.Struct(payload)
}

func parseID(c *fiber.Ctx, param, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, errBadRequest{fmt.Sprintf("Invalid %s ID format", what)}
	}
	return id, nil
}

func (h *ApplicationHandler) session(c *fiber.Ctx) (*editor.Session, error) {
	id, err := parseID(c, "id", "session")
	if err != nil {
		return nil, err
	}
	return h.Sessions.Get(id)
}

// respondErr maps domain errors onto status codes.
func (h *ApplicationHandler) respondErr(c *fiber.Ctx, err error) error {
	var bad errBadRequest
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return utils.RespondWithValidation(c, err)
	case errors.As(err, &bad):
		return utils.RespondWithError(c, fiber.StatusBadRequest, bad.msg)
	case clips.RejectionReason(err) != clips.ReasonNone:
		return utils.RespondWithRejection(c, fiber.StatusUnprocessableEntity, err.Error(), string(clips.RejectionReason(err)))
	case errors.Is(err, editor.ErrSessionNotFound),
		errors.Is(err, editor.ErrSessionClosed),
		errors.Is(err, clips.ErrNotFound),
		errors.Is(err, store.ErrRecordNotFound):
		return utils.RespondWithError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, editor.ErrNotReady),
		errors.Is(err, editor.ErrNoSearch),
		errors.Is(err, renderclient.ErrNoClips):
		return utils.RespondWithError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, transcript.ErrEmptySelection),
		errors.Is(err, transcript.ErrNotContiguous),
		errors.Is(err, transcript.ErrLineOutOfRange),
		errors.Is(err, timeinput.ErrNonDigit),
		errors.Is(err, timeinput.ErrUnknownField),
		errors.Is(err, playback.ErrInvalidRate),
		errors.Is(err, clips.ErrDuplicateID):
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.Logger.WithError(err).WithField("uri", c.OriginalURL()).Error("request failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

// sessionOptions builds editor options wired to persistence and the
// registry.
func (h *ApplicationHandler) sessionOptions() editor.Options {
	return editor.Options{
		DefaultClipSeconds: h.Editor.DefaultClipSeconds,
		FallbackPad:        h.Editor.FallbackPadSeconds,
		LongPressHold:      h.Editor.LongPress(),
		TouchJitter:        h.Editor.TouchJitterPX,
		Logger:             h.Logger.WithField("component", "editor"),
		OnClipsChange:      h.Persister.Persist,
		OnRemoveVideo: func(sessionID, videoID uuid.UUID) {
			if err := h.Sessions.Close(sessionID); err != nil {
				h.Logger.WithError(err).WithField("video_id", videoID).Warn("remove video on a closed session")
			}
		},
	}
}
