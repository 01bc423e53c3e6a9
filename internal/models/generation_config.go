package models

// GenerationConfig configures the hosted generation model (Anthropic
// Messages API). ArtifactModel is used for the long-form research
// artifacts; Model answers interactive queries.
type GenerationConfig struct {
	Model             string            `yaml:"model" json:"model"`
	ArtifactModel     string            `yaml:"artifact_model,omitempty" json:"artifact_model,omitzero"`
	APIKey            string            `yaml:"api_key" json:"api_key,omitzero"`
	BaseURL           string            `yaml:"base_url,omitempty" json:"base_url,omitzero"`
	MaxTokens         int64             `yaml:"max_tokens,omitempty" json:"max_tokens,omitzero"`
	ArtifactMaxTokens int64             `yaml:"artifact_max_tokens,omitempty" json:"artifact_max_tokens,omitzero"`
	Headers           map[string]string `yaml:"headers,omitempty" json:"headers,omitzero"`
}

// ResponseCacheConfig configures the deterministic response cache.
// Replay selects replay-only mode: cache misses fail instead of
// falling through to a live call.
type ResponseCacheConfig struct {
	Dir    string `yaml:"dir" json:"dir"`
	Replay bool   `yaml:"replay" json:"replay"`
}
