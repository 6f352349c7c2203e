package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/export"
	"videothingy/clipdeck/internal/jobs"
	"videothingy/clipdeck/internal/renderclient"
	"videothingy/clipdeck/utils"
)

// RenderRequest picks clips to render; empty renders all of them.
type RenderRequest struct {
	ClipIDs []string `json:"clip_ids" validate:"omitempty,dive,uuid"`
}

// RenderResponse reports a remote render or the local jobs queued.
type RenderResponse struct {
	Remote *renderclient.Result `json:"remote,omitempty"`
	JobIDs []string             `json:"job_ids,omitempty"`
}

// ExportEDL returns the clip list as an EDL. ?fps= sets the frame rate.
func (h *ApplicationHandler) ExportEDL(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	fps := export.DefaultFrameRate
	if raw := c.Query("fps"); raw != "" {
		fps, err = strconv.ParseFloat(raw, 64)
		if err != nil || fps <= 0 {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid fps")
		}
	}
	edl := s.ExportEDL(c.Query("title"), fps)
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", s.VideoID.String()+".edl"))
	return c.SendString(edl)
}

// RenderClips godoc
// @Summary Render clips
// @Description Sends clips to the remote render pipeline when one is configured, otherwise queues local ffmpeg extraction jobs.
// @Tags render
// @Accept  json
// @Produce  json
// @Param   id path string true "Session ID"
// @Param   render body RenderRequest false "Clips to render"
// @Success 202 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse "No clips"
// @Router /sessions/{id}/render [post]
func (h *ApplicationHandler) RenderClips(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.respondErr(c, err)
	}
	payload := new(RenderRequest)
	if len(c.Body()) > 0 {
		if err := parseBody(c, payload); err != nil {
			return h.respondErr(c, err)
		}
	}
	list, err := pickClips(s.Clips(), payload.ClipIDs)
	if err != nil {
		return h.respondErr(c, err)
	}
	if len(list) == 0 {
		return h.respondErr(c, renderclient.ErrNoClips)
	}

	source := s.Source()
	log := h.Logger.WithFields(logrus.Fields{"session_id": s.ID, "video_id": s.VideoID, "clips": len(list)})

	if h.Renderer != nil {
		res, err := h.Renderer.RenderClips(c.Context(), renderclient.Request{VideoID: s.VideoID, SourcePath: source, Clips: list})
		if err != nil {
			log.WithError(err).Error("remote render failed")
			return utils.RespondWithError(c, fiber.StatusBadGateway, "Render service unavailable")
		}
		return utils.RespondWithJSON(c, fiber.StatusAccepted, RenderResponse{Remote: res})
	}

	ids := make([]string, 0, len(list))
	for _, clip := range list {
		job, err := jobs.NewExtractClipJob(c.Context(), h.Store, h.Extractor, log, s.VideoID, source, h.Render.OutputDir, clip)
		if err != nil {
			return h.respondErr(c, err)
		}
		if err := h.Jobs.SubmitJob(job); err != nil {
			log.WithError(err).Warn("could not queue render")
			return utils.RespondWithError(c, fiber.StatusServiceUnavailable, err.Error())
		}
		ids = append(ids, job.ID())
	}
	log.Info("render jobs queued")
	return utils.RespondWithJSON(c, fiber.StatusAccepted, RenderResponse{JobIDs: ids})
}

func pickClips(all []clips.Clip, ids []string) ([]clips.Clip, error) {
	if len(ids) == 0 {
		return all, nil
	}
	byID := make(map[uuid.UUID]clips.Clip, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	out := make([]clips.Clip, 0, len(ids))
	for _, raw := range ids {
		id := uuid.MustParse(raw)
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("clip %s: %w", id, clips.ErrNotFound)
		}
		out = append(out, c)
	}
	return out, nil
}
