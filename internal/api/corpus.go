package api

import (
	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/services/ingest"
	"github.com/tahazakir/corpusqa/internal/services/vectorstore"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// CorpusHandler reports on the indexed corpus.
type CorpusHandler struct {
	manifest *ingest.Manifest
	store    vectorstore.VectorStore
}

// NewCorpusHandler creates a CorpusHandler.
func NewCorpusHandler(manifest *ingest.Manifest, store vectorstore.VectorStore) *CorpusHandler {
	return &CorpusHandler{manifest: manifest, store: store}
}

// CorpusResponse lists the manifest sources and index size.
type CorpusResponse struct {
	Sources      []models.SourceMetadata `json:"sources"`
	NumSources   int                     `json:"num_sources"`
	IndexedChunks int                    `json:"indexed_chunks"`
}

// Corpus handles GET /v1/corpus.
func (h *CorpusHandler) Corpus(c *fiber.Ctx) error {
	reqID := requestID(c)

	count, err := h.store.Count(c.UserContext())
	if err != nil {
		return respondError(c, err, reqID)
	}

	fiberlog.Debugf("[%s] Corpus: %d sources, %d chunks", reqID, len(h.manifest.Sources), count)
	return c.JSON(CorpusResponse{
		Sources:       h.manifest.Sources,
		NumSources:    len(h.manifest.Sources),
		IndexedChunks: count,
	})
}
