package vectorstore

import (
	"context"

	"github.com/tahazakir/corpusqa/internal/models"
)

// Point is one embedded chunk plus the document metadata stored in its
// payload.
type Point struct {
	Chunk  models.Chunk
	Meta   models.SourceMetadata
	Vector []float64
}

// SearchFilters narrows similarity search by payload metadata. A nil
// Year and empty DocType/SourceIDs leave that field unconstrained.
type SearchFilters struct {
	Year      *int
	DocType   string
	SourceIDs []string
}

// VectorStore persists embedded chunks and supports filtered
// similarity search over them.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, vector []float64, topK int, filters SearchFilters) ([]models.RetrievedChunk, error)
	ListChunkIDs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	Drop(ctx context.Context) error
}
