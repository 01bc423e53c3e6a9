package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tahazakir/corpusqa/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultChunkTargetChars  = 4096
	defaultChunkOverlapChars = 400
	defaultTopK              = 8
	defaultMaxPerSource      = 3
	defaultMaxTokens         = 2048
	defaultArtifactMaxTokens = 4096
)

// PromptTemplateVersion tags every run log entry with the prompt
// template revision that produced it.
const PromptTemplateVersion = "v2"

// Config represents the complete application configuration
type Config struct {
	Server      models.ServerConfig        `yaml:"server"`
	Corpus      models.CorpusConfig        `yaml:"corpus"`
	Embedding   models.EmbeddingConfig     `yaml:"embedding"`
	VectorStore models.VectorStoreConfig   `yaml:"vector_store"`
	Generation  models.GenerationConfig    `yaml:"generation"`
	Cache       models.ResponseCacheConfig `yaml:"cache"`
	Retrieval   models.RetrievalConfig     `yaml:"retrieval"`
	Database    *models.DatabaseConfig     `yaml:"database,omitempty"`
	Eval        models.EvalConfig          `yaml:"eval"`
}

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	// Validate and clean the file path to prevent directory traversal
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

// LoadEnvFiles loads environment variables from .env files in order of precedence
// Loads files in the order provided (first has highest priority)
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err == nil {
				fmt.Printf("Loaded environment variables from %s\n", envFile)
			}
		}
	}
}

// New creates a new Config instance by loading from the specified config file path
func New(configPath string) (*Config, error) {
	return LoadFromFile(configPath)
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		submatches := re.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""

		if len(submatches) > 2 && submatches[2] != "" {
			// Remove the leading '-' from default value
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

func (c *Config) applyDefaults() {
	if c.Corpus.ChunkTargetChars == 0 {
		c.Corpus.ChunkTargetChars = defaultChunkTargetChars
	}
	if c.Corpus.ChunkOverlapChars == 0 {
		c.Corpus.ChunkOverlapChars = defaultChunkOverlapChars
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = defaultTopK
	}
	if c.Retrieval.MaxPerSource == 0 {
		c.Retrieval.MaxPerSource = defaultMaxPerSource
	}
	if c.Generation.MaxTokens == 0 {
		c.Generation.MaxTokens = defaultMaxTokens
	}
	if c.Generation.ArtifactMaxTokens == 0 {
		c.Generation.ArtifactMaxTokens = defaultArtifactMaxTokens
	}
	if c.Generation.ArtifactModel == "" {
		c.Generation.ArtifactModel = c.Generation.Model
	}
}

// Validate checks the configuration for required fields
func (c *Config) Validate() error {
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive")
	}
	if c.VectorStore.URL == "" {
		return fmt.Errorf("vector_store.url is required")
	}
	if c.VectorStore.Collection == "" {
		return fmt.Errorf("vector_store.collection is required")
	}
	if c.Generation.Model == "" {
		return fmt.Errorf("generation.model is required")
	}
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}
	return nil
}

// GetNormalizedLogLevel returns the log level in lowercase for consistent comparison
func (c *Config) GetNormalizedLogLevel() string {
	return strings.ToLower(c.Server.LogLevel)
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
