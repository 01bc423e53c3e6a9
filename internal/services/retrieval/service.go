// Package retrieval embeds queries and searches the vector store, with
// source diversification so multi-document synthesis questions draw
// evidence from more than one paper.
package retrieval

import (
	"context"

	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/services/embedding"
	"github.com/tahazakir/corpusqa/internal/services/ingest"
	"github.com/tahazakir/corpusqa/internal/services/vectorstore"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Service runs filtered similarity search over the indexed corpus.
type Service struct {
	embedder     embedding.Embedder
	store        vectorstore.VectorStore
	manifest     *ingest.Manifest
	topK         int
	maxPerSource int
}

// NewService creates a retrieval service. manifest backs the author
// filter, which has no native representation in the store's payload
// index.
func NewService(embedder embedding.Embedder, store vectorstore.VectorStore, manifest *ingest.Manifest, cfg models.RetrievalConfig) *Service {
	return &Service{
		embedder:     embedder,
		store:        store,
		manifest:     manifest,
		topK:         cfg.TopK,
		maxPerSource: cfg.MaxPerSource,
	}
}

// TopK returns the configured default result count.
func (s *Service) TopK() int {
	return s.topK
}

// Retrieve returns the top-k chunks matching the query under the given
// metadata filters. An author filter that matches no manifest source
// short-circuits to an empty result without querying the store.
func (s *Service) Retrieve(ctx context.Context, query string, topK int, filters models.RetrievalFilters) ([]models.RetrievedChunk, error) {
	if topK <= 0 {
		topK = s.topK
	}

	searchFilters := vectorstore.SearchFilters{
		Year:    filters.Year,
		DocType: filters.DocType,
	}
	if filters.Author != "" {
		matched := s.manifest.MatchAuthor(filters.Author)
		if len(matched) == 0 {
			fiberlog.Debugf("Author filter %q matched no corpus sources", filters.Author)
			return nil, nil
		}
		searchFilters.SourceIDs = matched
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	return s.store.Search(ctx, vector, topK, searchFilters)
}

// RetrieveDiversified fetches twice the requested chunks and then caps
// the number kept per source, preserving score order, so no single
// document dominates the context window.
func (s *Service) RetrieveDiversified(ctx context.Context, query string, topK int, filters models.RetrievalFilters) ([]models.RetrievedChunk, error) {
	if topK <= 0 {
		topK = s.topK
	}

	raw, err := s.Retrieve(ctx, query, topK*2, filters)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	diversified := make([]models.RetrievedChunk, 0, topK)
	for _, chunk := range raw {
		if seen[chunk.SourceID] >= s.maxPerSource {
			continue
		}
		diversified = append(diversified, chunk)
		seen[chunk.SourceID]++
		if len(diversified) >= topK {
			break
		}
	}
	return diversified, nil
}
