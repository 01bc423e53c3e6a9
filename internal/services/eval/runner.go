package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/services/query"
	"github.com/tahazakir/corpusqa/internal/services/vectorstore"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// EvalQuery is one entry of the evaluation query set.
type EvalQuery struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"` // direct | synthesis | edge_case
	Query           string   `json:"query"`
	ExpectedSources []string `json:"expected_sources"`
}

// QueryOutcome is the scored result of one evaluation query.
type QueryOutcome struct {
	QueryID          string           `json:"query_id"`
	QueryType        string           `json:"query_type"`
	QueryText        string           `json:"query_text"`
	Answer           string           `json:"answer,omitzero"`
	LatencyMS        float64          `json:"latency_ms,omitzero"`
	NumChunks        int              `json:"num_chunks_retrieved"`
	RetrievedSources []string         `json:"retrieved_sources,omitzero"`
	ExpectedSources  []string         `json:"expected_sources,omitzero"`
	SourceRecall     *float64         `json:"source_recall"`
	CitationValidity CitationValidity `json:"citation_validity"`
	Groundedness     Groundedness     `json:"groundedness"`
	EvidenceHandling EvidenceHandling `json:"evidence_handling"`
	Error            string           `json:"error,omitzero"`
}

// Aggregates holds corpus-wide averages over successful queries.
type Aggregates struct {
	AvgCitationPrecision *float64 `json:"avg_citation_precision"`
	AvgGroundedness      *float64 `json:"avg_groundedness"`
	AvgSourceRecall      *float64 `json:"avg_source_recall"`
}

// Report is the full evaluation run output, persisted as JSON.
type Report struct {
	RunTimestamp string                `json:"run_timestamp"`
	TotalQueries int                   `json:"total_queries"`
	Successful   int                   `json:"successful"`
	TotalTimeS   float64               `json:"total_time_s"`
	Aggregates   Aggregates            `json:"aggregate_metrics"`
	ByType       map[string]Aggregates `json:"metrics_by_type"`
	Results      []QueryOutcome        `json:"results"`
}

// Runner executes the evaluation query set against the live pipeline.
// With the response cache in replay mode the whole run is offline.
type Runner struct {
	cfg      models.EvalConfig
	pipeline *query.Service
	store    vectorstore.VectorStore
}

// NewRunner creates an evaluation runner.
func NewRunner(cfg models.EvalConfig, pipeline *query.Service, store vectorstore.VectorStore) *Runner {
	return &Runner{cfg: cfg, pipeline: pipeline, store: store}
}

// Run executes every evaluation query, scores the answers, writes the
// report to the configured results path, and returns it.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	queries, err := r.loadQueries()
	if err != nil {
		return nil, err
	}
	fiberlog.Infof("Loaded %d evaluation queries", len(queries))

	chunkIDs, err := r.store.ListChunkIDs(ctx)
	if err != nil {
		return nil, err
	}
	validIDs := make(map[string]bool, len(chunkIDs))
	for _, id := range chunkIDs {
		validIDs[id] = true
	}
	fiberlog.Infof("Vector store has %d chunks", len(chunkIDs))

	start := time.Now()
	results := make([]QueryOutcome, 0, len(queries))
	for i, q := range queries {
		fiberlog.Infof("[%d/%d] (%s) %s", i+1, len(queries), q.Type, q.ID)
		results = append(results, r.runOne(ctx, q, validIDs))
	}

	report := &Report{
		RunTimestamp: time.Now().UTC().Format(time.RFC3339),
		TotalQueries: len(queries),
		TotalTimeS:   time.Since(start).Seconds(),
		Results:      results,
	}
	report.aggregate()

	if err := r.writeReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, q EvalQuery, validIDs map[string]bool) QueryOutcome {
	outcome := QueryOutcome{
		QueryID:         q.ID,
		QueryType:       q.Type,
		QueryText:       q.Query,
		ExpectedSources: q.ExpectedSources,
	}

	result, err := r.pipeline.Run(ctx, "eval-"+q.ID, q.Query, 0, models.RetrievalFilters{})
	if err != nil {
		outcome.Error = err.Error()
		fiberlog.Errorf("Evaluation query %s failed: %v", q.ID, err)
		return outcome
	}

	outcome.Answer = result.Answer
	outcome.LatencyMS = result.LatencyMS
	outcome.NumChunks = len(result.Chunks)
	outcome.CitationValidity = ComputeCitationValidity(result.Answer, validIDs)
	outcome.Groundedness = CheckGroundedness(result.Answer, result.Chunks)
	outcome.EvidenceHandling = CheckEvidenceMissingHandling(result.Answer, q.ExpectedSources)

	retrieved := make(map[string]bool)
	for _, c := range result.Chunks {
		if !retrieved[c.SourceID] {
			retrieved[c.SourceID] = true
			outcome.RetrievedSources = append(outcome.RetrievedSources, c.SourceID)
		}
	}
	if len(q.ExpectedSources) > 0 {
		hit := 0
		for _, s := range q.ExpectedSources {
			if retrieved[s] {
				hit++
			}
		}
		recall := float64(hit) / float64(len(q.ExpectedSources))
		outcome.SourceRecall = &recall
	}

	return outcome
}

func (report *Report) aggregate() {
	var successful []QueryOutcome
	byType := make(map[string][]QueryOutcome)
	for _, r := range report.Results {
		if r.Error != "" {
			continue
		}
		successful = append(successful, r)
		byType[r.QueryType] = append(byType[r.QueryType], r)
	}

	report.Successful = len(successful)
	report.Aggregates = aggregateOutcomes(successful)
	report.ByType = make(map[string]Aggregates, len(byType))
	for queryType, outcomes := range byType {
		report.ByType[queryType] = aggregateOutcomes(outcomes)
	}
}

func aggregateOutcomes(outcomes []QueryOutcome) Aggregates {
	var agg Aggregates
	var precSum, groundSum, recallSum float64
	withRecall := 0

	for _, r := range outcomes {
		precSum += r.CitationValidity.CitationPrecision
		groundSum += r.Groundedness.GroundednessScore
		if r.SourceRecall != nil {
			recallSum += *r.SourceRecall
			withRecall++
		}
	}

	if len(outcomes) > 0 {
		prec := precSum / float64(len(outcomes))
		ground := groundSum / float64(len(outcomes))
		agg.AvgCitationPrecision = &prec
		agg.AvgGroundedness = &ground
	}
	if withRecall > 0 {
		recall := recallSum / float64(withRecall)
		agg.AvgSourceRecall = &recall
	}
	return agg
}

func (r *Runner) loadQueries() ([]EvalQuery, error) {
	data, err := os.ReadFile(r.cfg.QueriesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read evaluation queries %s: %w", r.cfg.QueriesPath, err)
	}
	var queries []EvalQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation queries %s: %w", r.cfg.QueriesPath, err)
	}
	return queries, nil
}

func (r *Runner) writeReport(report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode evaluation report: %w", err)
	}
	if dir := filepath.Dir(r.cfg.ResultsPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}
	if err := os.WriteFile(r.cfg.ResultsPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write evaluation report: %w", err)
	}
	fiberlog.Infof("Evaluation results saved to %s", r.cfg.ResultsPath)
	return nil
}
