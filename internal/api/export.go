package api

import (
	"github.com/tahazakir/corpusqa/internal/services/export"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// ExportHandler renders artifact content into downloadable formats.
type ExportHandler struct{}

// NewExportHandler creates an ExportHandler.
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// ExportRequest is the POST /v1/export body.
type ExportRequest struct {
	Content string `json:"content"`
	Title   string `json:"title"`
	Format  string `json:"format"` // markdown | csv
}

// Export handles POST /v1/export and returns the rendered document
// with a Content-Disposition attachment header.
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	reqID := requestID(c)

	var req ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body: "+err.Error(), reqID)
	}
	if req.Content == "" {
		return respondBadRequest(c, "content is required", reqID)
	}
	if req.Title == "" {
		req.Title = "Research Artifact"
	}

	switch req.Format {
	case "", "markdown":
		fiberlog.Debugf("[%s] Exporting markdown: %s", reqID, req.Title)
		c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="artifact.md"`)
		return c.SendString(export.Markdown(req.Content, req.Title))
	case "csv":
		out, err := export.CSVFromMarkdownTable(req.Content)
		if err != nil {
			return respondError(c, err, reqID)
		}
		fiberlog.Debugf("[%s] Exporting CSV: %s", reqID, req.Title)
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="artifact.csv"`)
		return c.SendString(out)
	default:
		return respondBadRequest(c, "unsupported export format: "+req.Format, reqID)
	}
}
