package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tahazakir/corpusqa/internal/models"
)

// Entry is one cached generation response. Entries are immutable once
// written; LatencyMS records the wall-clock latency of the original
// live call.
type Entry struct {
	Model     string    `json:"model"`
	Response  string    `json:"response"`
	LatencyMS float64   `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the persistence contract for cached responses.
type Store interface {
	Lookup(key string) (*Entry, bool, error)
	Store(key string, entry *Entry) error
}

// FileStore keeps one JSON file per fingerprint in a directory.
// There is no eviction and no locking: writes for the same key carry
// identical content, so concurrent writers converge.
type FileStore struct {
	dir string
}

// NewFileStore creates the cache directory if needed and returns a
// store rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, models.NewWriteError(fmt.Sprintf("failed to create cache directory %s", dir), err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) entryPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Lookup reads the entry for key. It is a pure read: absent entries
// report ok=false with no error.
func (s *FileStore) Lookup(key string) (*Entry, bool, error) {
	data, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, models.NewInternalError(fmt.Sprintf("failed to read cache entry %s", key), err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, models.NewInternalError(fmt.Sprintf("corrupt cache entry %s", key), err)
	}
	return &entry, true, nil
}

// Store persists an entry keyed by fingerprint. Writing an entry that
// already exists with identical content is a no-op, which makes racing
// writers on the same key harmless.
func (s *FileStore) Store(key string, entry *Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return models.NewWriteError(fmt.Sprintf("failed to encode cache entry %s", key), err)
	}

	path := s.entryPath(key)
	if existing, readErr := os.ReadFile(path); readErr == nil && bytes.Equal(existing, data) {
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return models.NewWriteError(fmt.Sprintf("failed to write cache entry %s", key), err)
	}
	return nil
}
