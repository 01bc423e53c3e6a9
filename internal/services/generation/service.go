// Package generation produces cited answers and research artifacts
// from retrieved context via the Anthropic Messages API. Every model
// call is routed through the deterministic response cache, so seeded
// runs replay without network access.
package generation

import (
	"context"
	"fmt"

	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/services/cache"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// messageSender is the live-call surface of the Anthropic service.
type messageSender interface {
	SendMessage(ctx context.Context, model, system, user string, maxTokens int64, requestID string) (string, error)
}

// Result is one generation outcome. LatencyMS is the live-call latency
// recorded when the cache entry was created.
type Result struct {
	Text      string  `json:"text"`
	Model     string  `json:"model"`
	LatencyMS float64 `json:"latency_ms"`
	CacheHit  bool    `json:"cache_hit"`
}

// Generator composes prompts and runs them through the response cache.
type Generator struct {
	cfg    models.GenerationConfig
	sender messageSender
	cache  *cache.ResponseCache
}

// NewGenerator creates a Generator backed by sender and respCache.
func NewGenerator(cfg models.GenerationConfig, sender messageSender, respCache *cache.ResponseCache) *Generator {
	return &Generator{cfg: cfg, sender: sender, cache: respCache}
}

// AnswerQuery generates a cited answer for an interactive query. Empty
// retrieval short-circuits to the EVIDENCE MISSING answer without a
// model call.
func (g *Generator) AnswerQuery(ctx context.Context, requestID, query string, chunks []models.RetrievedChunk) (*Result, error) {
	if len(chunks) == 0 {
		fiberlog.Infof("[%s] No chunks retrieved, returning evidence-missing answer", requestID)
		return &Result{Text: EvidenceMissingAnswer, Model: g.cfg.Model}, nil
	}

	user := QueryMessage(chunks, query)
	return g.generate(ctx, requestID, g.cfg.Model, SystemPrompt, user, g.cfg.MaxTokens)
}

// Artifact generates a long-form research artifact for a topic. Gap
// analysis first produces an answer (through the cache like any other
// call) and then analyzes its coverage.
func (g *Generator) Artifact(ctx context.Context, requestID string, kind models.ArtifactKind, topic string, chunks []models.RetrievedChunk, sources []models.SourceMetadata) (*Result, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("unknown artifact kind %q", kind), nil)
	}
	if len(chunks) == 0 {
		return &Result{Text: EvidenceMissingAnswer, Model: g.cfg.ArtifactModel}, nil
	}

	contextStr := BuildContext(chunks)

	var system, user string
	switch kind {
	case models.ArtifactEvidenceTable:
		system = evidenceTableSystem
		user = fmt.Sprintf(evidenceTablePrompt, contextStr, topic)
	case models.ArtifactSynthesisMemo:
		system = synthesisMemoSystem
		user = fmt.Sprintf(synthesisMemoPrompt, contextStr, formatSourceList(sources), topic)
	case models.ArtifactGapAnalysis:
		answer, err := g.AnswerQuery(ctx, requestID, topic, chunks)
		if err != nil {
			return nil, err
		}
		system = analysisSystem
		user = fmt.Sprintf(gapAnalysisPrompt, contextStr, answer.Text, topic)
	case models.ArtifactDisagreementMap:
		system = analysisSystem
		user = fmt.Sprintf(disagreementMapPrompt, contextStr, topic)
	}

	return g.generate(ctx, requestID, g.cfg.ArtifactModel, system, user, g.cfg.ArtifactMaxTokens)
}

func (g *Generator) generate(ctx context.Context, requestID, model, system, user string, maxTokens int64) (*Result, error) {
	entry, hit, err := g.cache.GetOrCall(ctx, model, system, user, func(ctx context.Context) (string, error) {
		return g.sender.SendMessage(ctx, model, system, user, maxTokens, requestID)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Text:      entry.Response,
		Model:     model,
		LatencyMS: entry.LatencyMS,
		CacheHit:  hit,
	}, nil
}
