// Package query runs the full pipeline for one question: diversified
// retrieval, cached generation, and run logging.
package query

import (
	"context"
	"time"

	"github.com/tahazakir/corpusqa/internal/config"
	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/services/generation"
	"github.com/tahazakir/corpusqa/internal/services/retrieval"
	"github.com/tahazakir/corpusqa/internal/services/runlog"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Service wires retrieval, generation, and the run log. The run log is
// optional; without a database the pipeline still answers.
type Service struct {
	retrieval *retrieval.Service
	generator *generation.Generator
	runLog    *runlog.Service
}

// NewService assembles the query pipeline.
func NewService(retrievalSvc *retrieval.Service, generator *generation.Generator, runLog *runlog.Service) *Service {
	return &Service{retrieval: retrievalSvc, generator: generator, runLog: runLog}
}

// Run retrieves diversified context for text, generates a cited
// answer, and logs the interaction. topK <= 0 uses the configured
// default.
func (s *Service) Run(ctx context.Context, requestID, text string, topK int, filters models.RetrievalFilters) (*models.QueryResult, error) {
	start := time.Now()

	chunks, err := s.retrieval.RetrieveDiversified(ctx, text, topK, filters)
	if err != nil {
		return nil, err
	}
	fiberlog.Debugf("[%s] Retrieved %d chunks", requestID, len(chunks))

	genResult, err := s.generator.AnswerQuery(ctx, requestID, text, chunks)
	if err != nil {
		return nil, err
	}

	result := &models.QueryResult{
		QueryID:   uuid.NewString(),
		QueryText: text,
		Answer:    genResult.Text,
		Chunks:    chunks,
		Model:     genResult.Model,
		LatencyMS: float64(time.Since(start).Microseconds()) / 1000.0,
		CacheHit:  genResult.CacheHit,
	}

	if s.runLog != nil {
		if _, err := s.runLog.Log(result, filters, config.PromptTemplateVersion); err != nil {
			// Logging failure should not fail the query.
			fiberlog.Errorf("[%s] Failed to log query: %v", requestID, err)
		}
	}

	return result, nil
}
