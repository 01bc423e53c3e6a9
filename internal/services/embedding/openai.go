package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/utils/clientcache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/openai/openai-go/v2"
	openaiOption "github.com/openai/openai-go/v2/option"
)

// OpenAIEmbedder embeds text via the OpenAI embeddings API.
type OpenAIEmbedder struct {
	cfg         models.EmbeddingConfig
	clientCache *clientcache.Cache[*openai.Client]
}

// NewOpenAIEmbedder creates an OpenAI-backed embedder.
func NewOpenAIEmbedder(cfg models.EmbeddingConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, models.NewProviderError("openai", "API key not configured", nil)
	}
	return &OpenAIEmbedder{
		cfg:         cfg,
		clientCache: clientcache.NewCache[*openai.Client](),
	}, nil
}

// Name returns the provider name
func (e *OpenAIEmbedder) Name() string { return "openai" }

// Dimension returns the configured vector dimension
func (e *OpenAIEmbedder) Dimension() int { return e.cfg.Dimension }

// generateConfigHash creates a hash of the embedding config to detect changes
func (e *OpenAIEmbedder) generateConfigHash() (string, error) {
	type configForHash struct {
		BaseURL    string
		Headers    map[string]string
		APIKeyHash string
	}

	apiKeyHash := sha256.Sum256([]byte(e.cfg.APIKey))
	hashConfig := configForHash{
		BaseURL:    e.cfg.BaseURL,
		Headers:    e.cfg.Headers,
		APIKeyHash: fmt.Sprintf("%x", apiKeyHash[:8]),
	}

	configJSON, err := json.Marshal(hashConfig)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(configJSON)
	return fmt.Sprintf("%x", hash[:16]), nil
}

func (e *OpenAIEmbedder) client() (*openai.Client, error) {
	configHash, err := e.generateConfigHash()
	if err != nil {
		fiberlog.Warnf("Failed to generate config hash: %v, creating new client without caching", err)
		return e.buildClient(), nil
	}

	return e.clientCache.GetOrCreate(configHash, func() (*openai.Client, error) {
		fiberlog.Debugf("Creating new OpenAI embedding client (config hash: %s)", configHash[:8])
		return e.buildClient(), nil
	})
}

func (e *OpenAIEmbedder) buildClient() *openai.Client {
	opts := []openaiOption.RequestOption{
		openaiOption.WithAPIKey(e.cfg.APIKey),
	}
	if e.cfg.BaseURL != "" {
		opts = append(opts, openaiOption.WithBaseURL(e.cfg.BaseURL))
	}
	for key, value := range e.cfg.Headers {
		opts = append(opts, openaiOption.WithHeader(key, value))
	}
	if e.cfg.TimeoutMs > 0 {
		httpClient := &http.Client{Timeout: time.Duration(e.cfg.TimeoutMs) * time.Millisecond}
		opts = append(opts, openaiOption.WithHTTPClient(httpClient))
	}

	client := openai.NewClient(opts...)
	return &client
}

// EmbedDocuments embeds a batch of chunk texts.
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	client, err := e.client()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.cfg.Model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, models.NewProviderError("openai", "embedding request failed", err)
	}
	fiberlog.Debugf("OpenAI embedded %d documents in %v", len(texts), time.Since(start))

	if len(resp.Data) != len(texts) {
		return nil, models.NewProviderError("openai",
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Data)), nil)
	}

	vectors := make([][]float64, len(resp.Data))
	for _, d := range resp.Data {
		vectors[int(d.Index)] = truncate(d.Embedding, e.cfg.Dimension)
	}
	return vectors, nil
}

// EmbedQuery embeds a single retrieval query.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
