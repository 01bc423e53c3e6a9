package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tahazakir/corpusqa/internal/models"

	"github.com/google/uuid"
)

// Qdrant is a minimal REST client to Qdrant. It assumes cosine
// distance and creates the collection on Init if missing. Point IDs
// are UUIDs derived deterministically from chunk IDs, so re-ingestion
// upserts in place.
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// NewQdrant creates a Qdrant client from config. Timeout defaults to
// 15 seconds.
func NewQdrant(cfg models.VectorStoreConfig) *Qdrant {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init creates the collection if it does not exist. Qdrant returns 200
// for an existing collection with the same schema.
func (q *Qdrant) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return models.NewValidationError("invalid vector dimension", nil)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", q.collection), body, nil)
}

// Upsert writes embedded chunks with their document metadata payloads.
func (q *Qdrant) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]map[string]any, len(points))
	for i, p := range points {
		qdrantPoints[i] = map[string]any{
			"id":     pointID(p.Chunk.ChunkID),
			"vector": p.Vector,
			"payload": map[string]any{
				"chunk_id":      p.Chunk.ChunkID,
				"source_id":     p.Chunk.SourceID,
				"section_title": p.Chunk.SectionTitle,
				"text":          p.Chunk.Text,
				"title":         p.Meta.Title,
				"filename":      p.Meta.Filename,
				"authors":       strings.Join(p.Meta.Authors, ", "),
				"year":          p.Meta.Year,
				"type":          p.Meta.Type,
			},
		}
	}
	body := map[string]any{"points": qdrantPoints}
	return q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", q.collection), body, nil)
}

// Search runs filtered cosine similarity search.
func (q *Qdrant) Search(ctx context.Context, vector []float64, topK int, filters SearchFilters) ([]models.RetrievedChunk, error) {
	if topK <= 0 {
		topK = 8
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if filter := buildFilter(filters); filter != nil {
		req["filter"] = filter
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := q.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", q.collection), req, &resp); err != nil {
		return nil, err
	}

	chunks := make([]models.RetrievedChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunks = append(chunks, chunkFromPayload(r.Payload, r.Score))
	}
	return chunks, nil
}

// ListChunkIDs scrolls the whole collection and returns every chunk ID.
// The corpus is small, so paging through it is cheap.
func (q *Qdrant) ListChunkIDs(ctx context.Context) ([]string, error) {
	var ids []string
	var offset any

	for {
		req := map[string]any{
			"limit":        256,
			"with_payload": []string{"chunk_id"},
		}
		if offset != nil {
			req["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := q.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/scroll", q.collection), req, &resp); err != nil {
			return nil, err
		}

		for _, p := range resp.Result.Points {
			if id, ok := p.Payload["chunk_id"].(string); ok {
				ids = append(ids, id)
			}
		}

		if resp.Result.NextPageOffset == nil {
			return ids, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// Count returns the exact number of points in the collection.
func (q *Qdrant) Count(ctx context.Context) (int, error) {
	req := map[string]any{"exact": true}
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := q.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/count", q.collection), req, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Drop deletes the collection.
func (q *Qdrant) Drop(ctx context.Context) error {
	return q.do(ctx, http.MethodDelete, fmt.Sprintf("/collections/%s", q.collection), nil, nil)
}

// pointID derives a stable UUID from a chunk ID; Qdrant point IDs must
// be integers or UUIDs.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}

func buildFilter(filters SearchFilters) map[string]any {
	var must []map[string]any
	if filters.Year != nil {
		must = append(must, map[string]any{
			"key":   "year",
			"match": map[string]any{"value": *filters.Year},
		})
	}
	if filters.DocType != "" {
		must = append(must, map[string]any{
			"key":   "type",
			"match": map[string]any{"value": filters.DocType},
		})
	}
	if len(filters.SourceIDs) > 0 {
		must = append(must, map[string]any{
			"key":   "source_id",
			"match": map[string]any{"any": filters.SourceIDs},
		})
	}
	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

func chunkFromPayload(payload map[string]any, score float64) models.RetrievedChunk {
	chunk := models.RetrievedChunk{Score: score}
	if v, ok := payload["chunk_id"].(string); ok {
		chunk.ChunkID = v
	}
	if v, ok := payload["source_id"].(string); ok {
		chunk.SourceID = v
	}
	if v, ok := payload["title"].(string); ok {
		chunk.Title = v
	}
	if v, ok := payload["section_title"].(string); ok {
		chunk.SectionTitle = v
	}
	if v, ok := payload["text"].(string); ok {
		chunk.Text = v
	}
	return chunk
}

func (q *Qdrant) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.url+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return models.NewProviderError("qdrant", fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return models.NewProviderError("qdrant", fmt.Sprintf("%s %s returned %s", method, path, resp.Status), nil)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return models.NewProviderError("qdrant", "failed to decode response", err)
		}
	}
	return nil
}
