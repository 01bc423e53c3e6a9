// Package runlog persists every query interaction so answers can be
// audited and the UI can show recent activity. A nil service (no
// database configured) degrades to a no-op.
package runlog

import (
	"encoding/json"

	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/services/database"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const snippetLen = 200

// Service writes and reads query log records.
type Service struct {
	db *database.DB
}

// NewService migrates the query_logs table and returns the service.
func NewService(db *database.DB) (*Service, error) {
	if err := db.AutoMigrate(&models.QueryLog{}); err != nil {
		return nil, models.NewInternalError("failed to migrate query log schema", err)
	}
	return &Service{db: db}, nil
}

// Log appends one interaction and returns its query ID. A result
// without a QueryID gets a fresh one.
func (s *Service) Log(result *models.QueryResult, filters models.RetrievalFilters, promptVersion string) (string, error) {
	queryID := result.QueryID
	if queryID == "" {
		queryID = uuid.NewString()
	}

	refs := make([]models.ChunkRef, len(result.Chunks))
	for i, c := range result.Chunks {
		snippet := c.Text
		if len(snippet) > snippetLen {
			snippet = snippet[:snippetLen]
		}
		refs[i] = models.ChunkRef{
			ChunkID:      c.ChunkID,
			SourceID:     c.SourceID,
			Title:        c.Title,
			SectionTitle: c.SectionTitle,
			Score:        c.Score,
			TextSnippet:  snippet,
		}
	}

	chunksJSON, err := json.Marshal(refs)
	if err != nil {
		return "", models.NewInternalError("failed to encode chunk refs", err)
	}
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return "", models.NewInternalError("failed to encode filters", err)
	}

	record := models.QueryLog{
		QueryID:       queryID,
		QueryText:     result.QueryText,
		FiltersJSON:   string(filtersJSON),
		ChunksJSON:    string(chunksJSON),
		PromptVersion: promptVersion,
		ModelID:       result.Model,
		Answer:        result.Answer,
		LatencyMS:     result.LatencyMS,
		CacheHit:      result.CacheHit,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", models.NewInternalError("failed to persist query log", err)
	}

	fiberlog.Debugf("Logged query %s (%d chunks, %.0fms)", queryID, len(refs), result.LatencyMS)
	return queryID, nil
}

// Recent returns the latest n query log records, newest first.
func (s *Service) Recent(n int) ([]models.QueryLog, error) {
	if n <= 0 {
		n = 20
	}
	var records []models.QueryLog
	if err := s.db.Order("created_at DESC").Limit(n).Find(&records).Error; err != nil {
		return nil, models.NewInternalError("failed to load query logs", err)
	}
	return records, nil
}
