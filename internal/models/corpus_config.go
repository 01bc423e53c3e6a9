package models

// CorpusConfig locates the raw corpus and its manifest.
type CorpusConfig struct {
	RawDir       string `yaml:"raw_dir" json:"raw_dir"`
	ManifestPath string `yaml:"manifest_path" json:"manifest_path"`

	// Chunk sizing, in characters (~4 chars per token for English text).
	ChunkTargetChars  int `yaml:"chunk_target_chars" json:"chunk_target_chars,omitzero"`
	ChunkOverlapChars int `yaml:"chunk_overlap_chars" json:"chunk_overlap_chars,omitzero"`
}

// RetrievalConfig controls top-k search and source diversification.
type RetrievalConfig struct {
	TopK         int `yaml:"top_k" json:"top_k,omitzero"`
	MaxPerSource int `yaml:"max_per_source" json:"max_per_source,omitzero"`
}

// EvalConfig locates the evaluation query set and where to write results.
type EvalConfig struct {
	QueriesPath string `yaml:"queries_path" json:"queries_path"`
	ResultsPath string `yaml:"results_path" json:"results_path"`
}
