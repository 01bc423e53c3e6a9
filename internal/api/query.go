package api

import (
	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/services/query"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// QueryHandler answers corpus questions over HTTP.
type QueryHandler struct {
	pipeline *query.Service
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(pipeline *query.Service) *QueryHandler {
	return &QueryHandler{pipeline: pipeline}
}

// QueryRequest is the POST /v1/query body.
type QueryRequest struct {
	Query   string                  `json:"query"`
	TopK    int                     `json:"top_k"`
	Filters models.RetrievalFilters `json:"filters"`
}

// Query handles POST /v1/query: diversified retrieval followed by a
// cached, cited answer.
func (h *QueryHandler) Query(c *fiber.Ctx) error {
	reqID := requestID(c)
	fiberlog.Infof("[%s] Starting query request from %s", reqID, c.IP())

	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body: "+err.Error(), reqID)
	}
	if req.Query == "" {
		return respondBadRequest(c, "query is required", reqID)
	}

	result, err := h.pipeline.Run(c.UserContext(), reqID, req.Query, req.TopK, req.Filters)
	if err != nil {
		return respondError(c, err, reqID)
	}

	fiberlog.Infof("[%s] Query answered (%d chunks, cache_hit=%t, %.0fms)",
		reqID, len(result.Chunks), result.CacheHit, result.LatencyMS)
	return c.JSON(result)
}
