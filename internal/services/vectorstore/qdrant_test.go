package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tahazakir/corpusqa/internal/models"

	"github.com/google/uuid"
)

func newTestQdrant(handler http.Handler) (*Qdrant, *httptest.Server) {
	srv := httptest.NewServer(handler)
	q := NewQdrant(models.VectorStoreConfig{
		URL:        srv.URL,
		APIKey:     "test-key",
		Collection: "corpus_chunks",
	})
	return q, srv
}

func TestUpsertPayloadAndPointIDs(t *testing.T) {
	var captured map[string]any
	q, srv := newTestQdrant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/collections/corpus_chunks/points" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("api-key") != "test-key" {
			t.Errorf("missing api-key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"result":{},"status":"ok"}`))
	}))
	defer srv.Close()

	point := Point{
		Chunk: models.Chunk{ChunkID: "harmbench_c01", SourceID: "harmbench", SectionTitle: "Abstract", Text: "text"},
		Meta: models.SourceMetadata{
			Title: "HarmBench", Filename: "harmbench.md",
			Authors: []string{"Mantas Mazeika", "Long Phan"}, Year: 2024, Type: "benchmark",
		},
		Vector: []float64{0.1, 0.2},
	}
	if err := q.Upsert(context.Background(), []Point{point}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points := captured["points"].([]any)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	p := points[0].(map[string]any)

	// Point IDs must be valid UUIDs and stable per chunk ID.
	id := p["id"].(string)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("point ID is not a UUID: %q", id)
	}
	if id != pointID("harmbench_c01") {
		t.Errorf("point ID not deterministic")
	}

	payload := p["payload"].(map[string]any)
	if payload["chunk_id"] != "harmbench_c01" || payload["source_id"] != "harmbench" {
		t.Errorf("unexpected payload: %v", payload)
	}
	if payload["authors"] != "Mantas Mazeika, Long Phan" {
		t.Errorf("authors should be joined: %v", payload["authors"])
	}
	if payload["year"] != float64(2024) {
		t.Errorf("unexpected year: %v", payload["year"])
	}
}

func TestSearchBuildsFilter(t *testing.T) {
	var captured map[string]any
	q, srv := newTestQdrant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/corpus_chunks/points/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"result":[{"score":0.91,"payload":{"chunk_id":"harmbench_c02","source_id":"harmbench","title":"HarmBench","section_title":"Results","text":"body"}}]}`))
	}))
	defer srv.Close()

	year := 2024
	chunks, err := q.Search(context.Background(), []float64{0.1}, 5, SearchFilters{
		Year:      &year,
		DocType:   "benchmark",
		SourceIDs: []string{"harmbench", "advbench"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured["limit"] != float64(5) {
		t.Errorf("unexpected limit: %v", captured["limit"])
	}
	filter := captured["filter"].(map[string]any)
	must := filter["must"].([]any)
	if len(must) != 3 {
		t.Fatalf("expected 3 filter conditions, got %d", len(must))
	}

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].ChunkID != "harmbench_c02" || chunks[0].Score != 0.91 {
		t.Errorf("unexpected chunk: %+v", chunks[0])
	}
}

func TestSearchNoFiltersOmitsFilter(t *testing.T) {
	var captured map[string]any
	q, srv := newTestQdrant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"result":[]}`))
	}))
	defer srv.Close()

	if _, err := q.Search(context.Background(), []float64{0.1}, 5, SearchFilters{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, present := captured["filter"]; present {
		t.Error("filter should be omitted when no conditions are set")
	}
}

func TestListChunkIDsPagination(t *testing.T) {
	call := 0
	q, srv := newTestQdrant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call++
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch call {
		case 1:
			if _, present := req["offset"]; present {
				t.Error("first scroll should have no offset")
			}
			_, _ = w.Write([]byte(`{"result":{"points":[{"payload":{"chunk_id":"a_c01"}},{"payload":{"chunk_id":"a_c02"}}],"next_page_offset":"cursor-1"}}`))
		case 2:
			if req["offset"] != "cursor-1" {
				t.Errorf("expected offset cursor-1, got %v", req["offset"])
			}
			_, _ = w.Write([]byte(`{"result":{"points":[{"payload":{"chunk_id":"b_c01"}}],"next_page_offset":null}}`))
		default:
			t.Errorf("unexpected extra scroll call %d", call)
		}
	}))
	defer srv.Close()

	ids, err := q.ListChunkIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 || ids[0] != "a_c01" || ids[2] != "b_c01" {
		t.Errorf("unexpected IDs: %v", ids)
	}
}

func TestCount(t *testing.T) {
	q, srv := newTestQdrant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/corpus_chunks/points/count" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"result":{"count":42}}`))
	}))
	defer srv.Close()

	count, err := q.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected 42, got %d", count)
	}
}

func TestErrorStatusWrapped(t *testing.T) {
	q, srv := newTestQdrant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := q.Count(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	var appErr *models.AppError
	if !asAppError(err, &appErr) || appErr.Type != models.ErrorTypeProvider {
		t.Errorf("expected provider error, got %v", err)
	}
}

func asAppError(err error, target **models.AppError) bool {
	e, ok := err.(*models.AppError)
	if ok {
		*target = e
	}
	return ok
}
