package handlers

import (
	"github.com/gofiber/fiber/v2"

	"videothingy/clipdeck/utils"
)

// GetJobStatus retrieves the status of a specific processing job.
// GET /api/v1/jobs/:jobId
func (h *ApplicationHandler) GetJobStatus(c *fiber.Ctx) error {
	jobID, err := parseID(c, "jobId", "job")
	if err != nil {
		return h.respondErr(c, err)
	}
	job, err := h.Store.GetJob(c.Context(), jobID)
	if err != nil {
		return h.respondErr(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, job)
}
