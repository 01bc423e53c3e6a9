package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/utils/clientcache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"google.golang.org/genai"
)

// GeminiEmbedder embeds text via the Gemini API, using the retrieval
// task types so document and query embeddings live in the same space.
type GeminiEmbedder struct {
	cfg         models.EmbeddingConfig
	clientCache *clientcache.Cache[*genai.Client]
}

// NewGeminiEmbedder creates a Gemini-backed embedder.
func NewGeminiEmbedder(cfg models.EmbeddingConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, models.NewProviderError("gemini", "API key not configured", nil)
	}
	return &GeminiEmbedder{
		cfg:         cfg,
		clientCache: clientcache.NewCache[*genai.Client](),
	}, nil
}

// Name returns the provider name
func (e *GeminiEmbedder) Name() string { return "gemini" }

// Dimension returns the configured vector dimension
func (e *GeminiEmbedder) Dimension() int { return e.cfg.Dimension }

func (e *GeminiEmbedder) client(ctx context.Context) (*genai.Client, error) {
	return e.clientCache.GetOrCreate(e.cfg.Model, func() (*genai.Client, error) {
		fiberlog.Debug("Creating new Gemini embedding client")
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  e.cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	})
}

func (e *GeminiEmbedder) embed(ctx context.Context, texts []string, taskType string) ([][]float64, error) {
	client, err := e.client(ctx)
	if err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.Text(text)...)
	}

	start := time.Now()
	resp, err := client.Models.EmbedContent(ctx, e.cfg.Model, contents, &genai.EmbedContentConfig{
		TaskType: taskType,
	})
	if err != nil {
		return nil, models.NewProviderError("gemini", "embedding request failed", err)
	}
	fiberlog.Debugf("Gemini embedded %d texts in %v", len(texts), time.Since(start))

	if len(resp.Embeddings) != len(texts) {
		return nil, models.NewProviderError("gemini",
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings)), nil)
	}

	vectors := make([][]float64, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vec := make([]float64, len(emb.Values))
		for j, v := range emb.Values {
			vec[j] = float64(v)
		}
		vectors[i] = truncate(vec, e.cfg.Dimension)
	}
	return vectors, nil
}

// EmbedDocuments embeds a batch of chunk texts.
func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.embed(ctx, texts, "RETRIEVAL_DOCUMENT")
}

// EmbedQuery embeds a single retrieval query.
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.embed(ctx, []string{text}, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
