// Package embedding wraps the hosted embedding providers behind a
// single interface. Vectors longer than the configured dimension are
// truncated so the index dimension stays stable across providers.
package embedding

import (
	"context"
	"fmt"

	"github.com/tahazakir/corpusqa/internal/models"
)

// Embedder converts text into vectors for indexing and retrieval.
// EmbedDocuments and EmbedQuery are separate so providers can apply
// task-specific handling (Gemini distinguishes retrieval document and
// retrieval query embeddings).
type Embedder interface {
	Name() string
	Dimension() int
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// New builds the embedder selected by cfg.Provider.
func New(cfg models.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIEmbedder(cfg)
	case "gemini":
		return NewGeminiEmbedder(cfg)
	default:
		return nil, models.NewValidationError(fmt.Sprintf("unknown embedding provider %q", cfg.Provider), nil)
	}
}

// truncate caps vec at dim entries. Matryoshka-style models return
// more dimensions than the index is configured for.
func truncate(vec []float64, dim int) []float64 {
	if dim > 0 && len(vec) > dim {
		return vec[:dim]
	}
	return vec
}
