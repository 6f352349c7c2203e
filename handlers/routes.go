package handlers

import (
	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "videothingy/clipdeck/docs"
)

// RegisterRoutes mounts the API under /api/v1 plus /health and /swagger.
func (h *ApplicationHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "ok",
			"message":  "clipdeck is healthy",
			"sessions": h.Sessions.Len(),
		})
	})
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	apiV1 := app.Group("/api/v1")

	apiV1.Post("/videos", h.CreateSourceVideo)
	apiV1.Get("/videos/:id", h.GetSourceVideo)
	apiV1.Get("/videos/:id/clips", h.ListVideoClips)
	apiV1.Get("/jobs/:jobId", h.GetJobStatus)

	sessions := apiV1.Group("/sessions")
	sessions.Post("/", h.OpenSession)
	sessions.Get("/:id", h.GetSession)
	sessions.Delete("/:id", h.CloseSession)
	sessions.Post("/:id/media", h.MediaReady)
	sessions.Post("/:id/source", h.ChangeSource)
	sessions.Delete("/:id/video", h.RemoveVideo)

	// Clips
	sessions.Get("/:id/clips", h.ListClips)
	sessions.Post("/:id/clips", h.AddClip)
	sessions.Post("/:id/clips/at-current-time", h.AddClipAtCurrentTime)
	sessions.Patch("/:id/clips/:clipId", h.UpdateClip)
	sessions.Delete("/:id/clips/:clipId", h.DeleteClip)
	sessions.Post("/:id/clips/:clipId/fields", h.EditField)
	sessions.Post("/:id/clips/:clipId/blur", h.BlurField)

	// Timeline drag
	sessions.Post("/:id/pointer/down", h.PointerDown)
	sessions.Post("/:id/pointer/move", h.PointerMove)
	sessions.Post("/:id/pointer/up", h.PointerUp)
	sessions.Post("/:id/touch/start", h.TouchStart)
	sessions.Post("/:id/touch/move", h.TouchMove)
	sessions.Post("/:id/touch/end", h.TouchEnd)
	sessions.Post("/:id/touch/cancel", h.TouchCancel)

	// Playback
	sessions.Post("/:id/playback/tick", h.Tick)
	sessions.Post("/:id/playback/seek", h.Seek)
	sessions.Post("/:id/playback/play", h.Play)
	sessions.Post("/:id/playback/pause", h.Pause)
	sessions.Post("/:id/playback/rate", h.SetPlaybackRate)
	sessions.Post("/:id/select/:clipId", h.SelectClip)
	sessions.Post("/:id/deselect", h.Deselect)

	// Transcript
	sessions.Get("/:id/transcript", h.GetTranscript)
	sessions.Post("/:id/transcript/begin", h.BeginSelection)
	sessions.Post("/:id/transcript/extend", h.ExtendSelection)
	sessions.Post("/:id/transcript/truncate", h.TruncateSelection)
	sessions.Post("/:id/transcript/commit", h.CommitSelection)
	sessions.Post("/:id/transcript/clear", h.ClearSelection)
	sessions.Post("/:id/transcript/click", h.ClickLine)
	sessions.Post("/:id/transcript/pointer/down", h.SweepStart)
	sessions.Post("/:id/transcript/pointer/enter", h.SweepEnter)
	sessions.Post("/:id/transcript/pointer/up", h.SweepEnd)
	sessions.Post("/:id/transcript/touch/start", h.TranscriptTouchStart)
	sessions.Post("/:id/transcript/touch/move", h.TranscriptTouchMove)
	sessions.Post("/:id/transcript/touch/end", h.TranscriptTouchEnd)
	sessions.Get("/:id/transcript/search", h.SearchTranscript)
	sessions.Post("/:id/transcript/search/next", h.NextMatch)
	sessions.Post("/:id/transcript/search/prev", h.PrevMatch)

	// Output
	sessions.Get("/:id/export.edl", h.ExportEDL)
	sessions.Post("/:id/render", h.RenderClips)
}
