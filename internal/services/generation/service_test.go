package generation

import (
	"context"
	"strings"
	"testing"

	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/services/cache"
)

type fakeSender struct {
	calls    int
	response string
}

func (f *fakeSender) SendMessage(ctx context.Context, model, system, user string, maxTokens int64, requestID string) (string, error) {
	f.calls++
	return f.response, nil
}

func newTestGenerator(t *testing.T, replay bool) (*Generator, *fakeSender) {
	t.Helper()
	store, err := cache.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sender := &fakeSender{response: "Answer [harmbench, harmbench_c01]."}
	cfg := models.GenerationConfig{
		Model:             "claude-3-5-haiku-latest",
		ArtifactModel:     "claude-sonnet-4-20250514",
		MaxTokens:         2048,
		ArtifactMaxTokens: 4096,
	}
	return NewGenerator(cfg, sender, cache.New(store, replay)), sender
}

func sampleChunks() []models.RetrievedChunk {
	return []models.RetrievedChunk{
		{ChunkID: "harmbench_c01", SourceID: "harmbench", Title: "HarmBench", SectionTitle: "Results", Text: "Attack success rates vary."},
	}
}

func TestAnswerQueryEmptyRetrievalShortCircuits(t *testing.T) {
	gen, sender := newTestGenerator(t, false)

	result, err := gen.AnswerQuery(context.Background(), "req1", "unknown topic", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != EvidenceMissingAnswer {
		t.Errorf("expected evidence-missing answer, got %q", result.Text)
	}
	if sender.calls != 0 {
		t.Errorf("no model call expected, got %d", sender.calls)
	}
}

func TestAnswerQueryCachesLiveCall(t *testing.T) {
	gen, sender := newTestGenerator(t, false)
	ctx := context.Background()

	first, err := gen.AnswerQuery(ctx, "req1", "What is HarmBench?", sampleChunks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.CacheHit {
		t.Error("first call should be a live call")
	}

	second, err := gen.AnswerQuery(ctx, "req2", "What is HarmBench?", sampleChunks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.CacheHit {
		t.Error("second identical call should hit the cache")
	}
	if second.Text != first.Text {
		t.Errorf("replayed answer differs: %q vs %q", second.Text, first.Text)
	}
	if sender.calls != 1 {
		t.Errorf("expected exactly one live call, got %d", sender.calls)
	}
}

func TestAnswerQueryReplayMiss(t *testing.T) {
	gen, sender := newTestGenerator(t, true)

	_, err := gen.AnswerQuery(context.Background(), "req1", "What is HarmBench?", sampleChunks())
	if !models.IsMissingCacheEntry(err) {
		t.Fatalf("expected missing cache entry error, got %v", err)
	}
	if sender.calls != 0 {
		t.Errorf("replay mode must not call the model, got %d calls", sender.calls)
	}
}

func TestArtifactRejectsUnknownKind(t *testing.T) {
	gen, _ := newTestGenerator(t, false)

	_, err := gen.Artifact(context.Background(), "req1", models.ArtifactKind("poem"), "topic", sampleChunks(), nil)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := err.(*models.AppError)
	if !ok || appErr.Type != models.ErrorTypeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestArtifactUsesArtifactModel(t *testing.T) {
	gen, _ := newTestGenerator(t, false)

	result, err := gen.Artifact(context.Background(), "req1", models.ArtifactEvidenceTable, "jailbreaks", sampleChunks(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Model != "claude-sonnet-4-20250514" {
		t.Errorf("expected artifact model, got %q", result.Model)
	}
}

func TestArtifactEmptyChunksShortCircuits(t *testing.T) {
	gen, sender := newTestGenerator(t, false)

	result, err := gen.Artifact(context.Background(), "req1", models.ArtifactSynthesisMemo, "topic", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != EvidenceMissingAnswer || sender.calls != 0 {
		t.Errorf("expected evidence-missing short circuit, got %q with %d calls", result.Text, sender.calls)
	}
}

func TestGapAnalysisRunsAnswerFirst(t *testing.T) {
	gen, sender := newTestGenerator(t, false)

	_, err := gen.Artifact(context.Background(), "req1", models.ArtifactGapAnalysis, "topic", sampleChunks(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One call for the underlying answer, one for the analysis.
	if sender.calls != 2 {
		t.Errorf("expected 2 live calls, got %d", sender.calls)
	}
}

func TestBuildContextFormatsCitations(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{ChunkID: "harmbench_c01", SourceID: "harmbench", Title: "HarmBench", SectionTitle: "Results", Text: "First."},
		{ChunkID: "advbench_c02", SourceID: "advbench", Title: "AdvBench", SectionTitle: "Setup", Text: "Second."},
	}

	out := BuildContext(chunks)
	if !strings.Contains(out, "[harmbench, harmbench_c01]") {
		t.Errorf("missing citation header: %q", out)
	}
	if !strings.Contains(out, "\n\n---\n\n") {
		t.Errorf("chunks should be separated: %q", out)
	}
}
