package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
embedding:
  provider: "openai"
  model: "text-embedding-3-small"
  dimension: 1536
vector_store:
  url: "http://localhost:6333"
  collection: "corpus_chunks"
generation:
  model: "claude-3-5-haiku-latest"
cache:
  dir: "data/response_cache"
`

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Corpus.ChunkTargetChars != 4096 || cfg.Corpus.ChunkOverlapChars != 400 {
		t.Errorf("unexpected chunk defaults: %+v", cfg.Corpus)
	}
	if cfg.Retrieval.TopK != 8 || cfg.Retrieval.MaxPerSource != 3 {
		t.Errorf("unexpected retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.Generation.MaxTokens != 2048 || cfg.Generation.ArtifactMaxTokens != 4096 {
		t.Errorf("unexpected token defaults: %+v", cfg.Generation)
	}
	if cfg.Generation.ArtifactModel != cfg.Generation.Model {
		t.Errorf("artifact model should default to the query model, got %q", cfg.Generation.ArtifactModel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("minimal config should validate: %v", err)
	}
}

func TestLoadFromFileEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_QDRANT_URL", "http://qdrant.internal:6333")
	os.Unsetenv("TEST_UNSET_PORT")

	content := `
server:
  port: "${TEST_UNSET_PORT:-9090}"
embedding:
  provider: "openai"
  model: "text-embedding-3-small"
  dimension: 1536
vector_store:
  url: "${TEST_QDRANT_URL}"
  collection: "corpus_chunks"
generation:
  model: "claude-3-5-haiku-latest"
cache:
  dir: "cache"
`
	cfg, err := LoadFromFile(writeConfig(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.VectorStore.URL != "http://qdrant.internal:6333" {
		t.Errorf("env var not substituted: %q", cfg.VectorStore.URL)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("default not applied for unset var: %q", cfg.Server.Port)
	}
}

func TestLoadFromFileRejectsTraversal(t *testing.T) {
	if _, err := LoadFromFile("../../../etc/config.yaml"); err == nil {
		t.Error("expected error for path traversal")
	}
}

func TestLoadFromFileRejectsNonYAML(t *testing.T) {
	if _, err := LoadFromFile("config.json"); err == nil {
		t.Error("expected error for non-YAML extension")
	}
}

func TestValidateMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"embedding model", func(c *Config) { c.Embedding.Model = "" }},
		{"embedding dimension", func(c *Config) { c.Embedding.Dimension = 0 }},
		{"vector store url", func(c *Config) { c.VectorStore.URL = "" }},
		{"collection", func(c *Config) { c.VectorStore.Collection = "" }},
		{"generation model", func(c *Config) { c.Generation.Model = "" }},
		{"cache dir", func(c *Config) { c.Cache.Dir = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for missing %s", tc.name)
			}
		})
	}
}
