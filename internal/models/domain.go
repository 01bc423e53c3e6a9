package models

// SourceMetadata describes one document in the corpus manifest.
type SourceMetadata struct {
	SourceID string   `json:"source_id" yaml:"source_id"`
	Filename string   `json:"filename" yaml:"filename"`
	Title    string   `json:"title" yaml:"title"`
	Authors  []string `json:"authors" yaml:"authors"`
	Year     int      `json:"year" yaml:"year"`
	Venue    string   `json:"venue,omitzero" yaml:"venue"`
	Type     string   `json:"type" yaml:"type"`
}

// Section is a heading-delimited portion of a parsed document.
type Section struct {
	Title string
	Text  string
}

// Document is a parsed corpus document: manifest metadata plus its sections.
type Document struct {
	Meta     SourceMetadata
	Sections []Section
}

// Chunk is a sized piece of a document section, the unit of indexing.
// Chunk IDs are stable across re-ingestion: "<source_id>_cNN".
type Chunk struct {
	ChunkID      string `json:"chunk_id"`
	SourceID     string `json:"source_id"`
	SectionTitle string `json:"section_title"`
	Text         string `json:"text"`
}

// RetrievedChunk is a chunk returned by similarity search with its score
// and the document metadata needed for prompting and citation.
type RetrievedChunk struct {
	ChunkID      string  `json:"chunk_id"`
	SourceID     string  `json:"source_id"`
	Title        string  `json:"title"`
	SectionTitle string  `json:"section_title"`
	Text         string  `json:"text"`
	Score        float64 `json:"score"`
}

// RetrievalFilters narrows retrieval by document metadata.
// Author matches by case-insensitive substring against the manifest.
type RetrievalFilters struct {
	Year    *int   `json:"year,omitempty"`
	Author  string `json:"author,omitempty"`
	DocType string `json:"doc_type,omitempty"`
}

// QueryResult is the outcome of one full retrieve-then-generate pass.
type QueryResult struct {
	QueryID   string           `json:"query_id"`
	QueryText string           `json:"query_text"`
	Answer    string           `json:"answer"`
	Chunks    []RetrievedChunk `json:"retrieved_chunks"`
	Model     string           `json:"model"`
	LatencyMS float64          `json:"latency_ms"`
	CacheHit  bool             `json:"cache_hit"`
}

// ArtifactKind selects which research artifact to generate.
type ArtifactKind string

const (
	ArtifactEvidenceTable   ArtifactKind = "evidence_table"
	ArtifactSynthesisMemo   ArtifactKind = "synthesis_memo"
	ArtifactGapAnalysis     ArtifactKind = "gap_analysis"
	ArtifactDisagreementMap ArtifactKind = "disagreement_map"
)

// Valid reports whether k names a known artifact kind.
func (k ArtifactKind) Valid() bool {
	switch k {
	case ArtifactEvidenceTable, ArtifactSynthesisMemo, ArtifactGapAnalysis, ArtifactDisagreementMap:
		return true
	}
	return false
}
