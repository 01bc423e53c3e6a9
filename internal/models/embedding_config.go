package models

// EmbeddingConfig configures the hosted embedding provider.
type EmbeddingConfig struct {
	Provider  string            `yaml:"provider" json:"provider"` // "openai" or "gemini"
	Model     string            `yaml:"model" json:"model"`
	APIKey    string            `yaml:"api_key" json:"api_key,omitzero"`
	BaseURL   string            `yaml:"base_url,omitempty" json:"base_url,omitzero"`
	Dimension int               `yaml:"dimension" json:"dimension"`
	TimeoutMs int               `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitzero"`
	Headers   map[string]string `yaml:"headers,omitempty" json:"headers,omitzero"`
}

// VectorStoreConfig configures the Qdrant collection backing retrieval.
type VectorStoreConfig struct {
	URL        string `yaml:"url" json:"url"`
	APIKey     string `yaml:"api_key,omitempty" json:"api_key,omitzero"`
	Collection string `yaml:"collection" json:"collection"`
	TimeoutMs  int    `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitzero"`
}
