package models

import "time"

// QueryLog is one logged query interaction, persisted via gorm.
// ChunksJSON holds the retrieved chunk references (id, source, section,
// score, 200-char snippet) and FiltersJSON the metadata filters applied.
type QueryLog struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	QueryID       string    `gorm:"size:36;uniqueIndex" json:"query_id"`
	CreatedAt     time.Time `json:"timestamp"`
	QueryText     string    `gorm:"type:text" json:"query_text"`
	FiltersJSON   string    `gorm:"type:text" json:"metadata_filters"`
	ChunksJSON    string    `gorm:"type:text" json:"retrieved_chunks"`
	PromptVersion string    `gorm:"size:16" json:"prompt_template_version"`
	ModelID       string    `gorm:"size:128" json:"model_id"`
	Answer        string    `gorm:"type:text" json:"generated_answer"`
	LatencyMS     float64   `json:"latency_ms"`
	CacheHit      bool      `json:"cache_hit"`
}

// TableName overrides the gorm default
func (QueryLog) TableName() string {
	return "query_logs"
}

// ChunkRef is the compact chunk reference stored in ChunksJSON.
type ChunkRef struct {
	ChunkID      string  `json:"chunk_id"`
	SourceID     string  `json:"source_id"`
	Title        string  `json:"title"`
	SectionTitle string  `json:"section_title"`
	Score        float64 `json:"score"`
	TextSnippet  string  `json:"text_snippet"`
}
