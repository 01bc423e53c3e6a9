package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tahazakir/corpusqa/internal/models"
)

// Manifest is the corpus manifest: one metadata record per document.
type Manifest struct {
	Sources []models.SourceMetadata `json:"sources"`
}

// LoadManifest reads and validates the corpus manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	seen := make(map[string]bool, len(m.Sources))
	for _, src := range m.Sources {
		if src.SourceID == "" {
			return nil, fmt.Errorf("manifest %s: source with empty source_id", path)
		}
		if seen[src.SourceID] {
			return nil, fmt.Errorf("manifest %s: duplicate source_id %q", path, src.SourceID)
		}
		seen[src.SourceID] = true
	}
	return &m, nil
}

// BySourceID returns the metadata for a source, if present.
func (m *Manifest) BySourceID(sourceID string) (models.SourceMetadata, bool) {
	for _, src := range m.Sources {
		if src.SourceID == sourceID {
			return src, true
		}
	}
	return models.SourceMetadata{}, false
}

// MatchAuthor returns the source IDs whose author list contains the
// given name as a case-insensitive substring.
func (m *Manifest) MatchAuthor(author string) []string {
	needle := strings.ToLower(author)
	var ids []string
	for _, src := range m.Sources {
		for _, a := range src.Authors {
			if strings.Contains(strings.ToLower(a), needle) {
				ids = append(ids, src.SourceID)
				break
			}
		}
	}
	return ids
}
