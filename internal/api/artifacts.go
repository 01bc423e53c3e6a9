package api

import (
	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/services/generation"
	"github.com/tahazakir/corpusqa/internal/services/ingest"
	"github.com/tahazakir/corpusqa/internal/services/retrieval"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// ArtifactHandler generates long-form research artifacts.
type ArtifactHandler struct {
	retrieval *retrieval.Service
	generator *generation.Generator
	manifest  *ingest.Manifest
}

// NewArtifactHandler creates an ArtifactHandler.
func NewArtifactHandler(retrievalSvc *retrieval.Service, generator *generation.Generator, manifest *ingest.Manifest) *ArtifactHandler {
	return &ArtifactHandler{retrieval: retrievalSvc, generator: generator, manifest: manifest}
}

// ArtifactRequest is the POST /v1/artifacts body.
type ArtifactRequest struct {
	Kind    models.ArtifactKind     `json:"kind"`
	Topic   string                  `json:"topic"`
	TopK    int                     `json:"top_k"`
	Filters models.RetrievalFilters `json:"filters"`
}

// ArtifactResponse is the artifact plus its evidence.
type ArtifactResponse struct {
	Kind     models.ArtifactKind     `json:"kind"`
	Topic    string                  `json:"topic"`
	Content  string                  `json:"content"`
	Model    string                  `json:"model"`
	CacheHit bool                    `json:"cache_hit"`
	Chunks   []models.RetrievedChunk `json:"retrieved_chunks"`
}

// Artifacts handles POST /v1/artifacts.
func (h *ArtifactHandler) Artifacts(c *fiber.Ctx) error {
	reqID := requestID(c)
	fiberlog.Infof("[%s] Starting artifact request from %s", reqID, c.IP())

	var req ArtifactRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body: "+err.Error(), reqID)
	}
	if req.Topic == "" {
		return respondBadRequest(c, "topic is required", reqID)
	}
	if !req.Kind.Valid() {
		return respondBadRequest(c, "unknown artifact kind: "+string(req.Kind), reqID)
	}

	topK := req.TopK
	if topK <= 0 {
		topK = artifactTopK(req.Kind)
	}

	chunks, err := h.retrieval.RetrieveDiversified(c.UserContext(), req.Topic, topK, req.Filters)
	if err != nil {
		return respondError(c, err, reqID)
	}
	fiberlog.Debugf("[%s] Retrieved %d chunks for %s artifact", reqID, len(chunks), req.Kind)

	result, err := h.generator.Artifact(c.UserContext(), reqID, req.Kind, req.Topic, chunks, h.citedSources(chunks))
	if err != nil {
		return respondError(c, err, reqID)
	}

	fiberlog.Infof("[%s] Generated %s artifact (cache_hit=%t)", reqID, req.Kind, result.CacheHit)
	return c.JSON(ArtifactResponse{
		Kind:     req.Kind,
		Topic:    req.Topic,
		Content:  result.Text,
		Model:    result.Model,
		CacheHit: result.CacheHit,
		Chunks:   chunks,
	})
}

// citedSources resolves manifest metadata for the sources the retrieved
// chunks came from, for the synthesis memo's source list.
func (h *ArtifactHandler) citedSources(chunks []models.RetrievedChunk) []models.SourceMetadata {
	seen := make(map[string]bool)
	var sources []models.SourceMetadata
	for _, c := range chunks {
		if seen[c.SourceID] {
			continue
		}
		seen[c.SourceID] = true
		if meta, ok := h.manifest.BySourceID(c.SourceID); ok {
			sources = append(sources, meta)
		}
	}
	return sources
}

// artifactTopK is the per-kind default evidence budget. Disagreement
// maps need the widest net to surface conflicting claims.
func artifactTopK(kind models.ArtifactKind) int {
	switch kind {
	case models.ArtifactSynthesisMemo:
		return 12
	case models.ArtifactDisagreementMap:
		return 15
	default:
		return 10
	}
}
