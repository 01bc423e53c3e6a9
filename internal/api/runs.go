package api

import (
	"github.com/tahazakir/corpusqa/internal/services/runlog"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// RunsHandler exposes the query run log.
type RunsHandler struct {
	runLog *runlog.Service
}

// NewRunsHandler creates a RunsHandler. runLog may be nil when no
// database is configured.
func NewRunsHandler(runLog *runlog.Service) *RunsHandler {
	return &RunsHandler{runLog: runLog}
}

// Runs handles GET /v1/runs?limit=n, newest first.
func (h *RunsHandler) Runs(c *fiber.Ctx) error {
	reqID := requestID(c)

	if h.runLog == nil {
		return respondBadRequest(c, "run logging is not configured", reqID)
	}

	limit := c.QueryInt("limit", 20)
	records, err := h.runLog.Recent(limit)
	if err != nil {
		return respondError(c, err, reqID)
	}

	fiberlog.Debugf("[%s] Returning %d run log records", reqID, len(records))
	return c.JSON(fiber.Map{"runs": records, "count": len(records)})
}
