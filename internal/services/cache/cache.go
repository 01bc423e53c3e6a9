// Package cache implements the deterministic response cache that makes
// hosted-model calls replayable. Requests are keyed by a SHA-256
// fingerprint of (model, system instructions, user message); a key
// present in the store always short-circuits the live call, and replay
// mode turns cache misses into errors so evaluation runs never touch
// the network.
package cache

import (
	"context"
	"time"

	"github.com/tahazakir/corpusqa/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// LiveCallFunc performs the live generation request on a cache miss.
type LiveCallFunc func(ctx context.Context) (string, error)

// ResponseCache intercepts generation calls through an injected store.
type ResponseCache struct {
	store  Store
	replay bool
}

// New creates a ResponseCache. When replay is true only previously
// cached results may be returned.
func New(store Store, replay bool) *ResponseCache {
	return &ResponseCache{store: store, replay: replay}
}

// ReplayMode reports whether live calls are forbidden.
func (c *ResponseCache) ReplayMode() bool {
	return c.replay
}

// GetOrCall returns the cached response for the request triple, or
// invokes live exactly once and persists the result. The returned bool
// reports whether the response came from the cache. In replay mode a
// miss fails with a MissingCacheEntry error and live is never invoked.
func (c *ResponseCache) GetOrCall(ctx context.Context, model, system, user string, live LiveCallFunc) (*Entry, bool, error) {
	key := Fingerprint(model, system, user)

	entry, found, err := c.store.Lookup(key)
	if err != nil {
		return nil, false, err
	}
	if found {
		fiberlog.Debugf("response cache hit for %s (model: %s)", key[:12], model)
		return entry, true, nil
	}

	if c.replay {
		fiberlog.Warnf("response cache miss for %s in replay mode", key[:12])
		return nil, false, models.NewMissingCacheEntryError(key)
	}

	start := time.Now()
	response, err := live(ctx)
	if err != nil {
		return nil, false, err
	}

	entry = &Entry{
		Model:     model,
		Response:  response,
		LatencyMS: float64(time.Since(start).Microseconds()) / 1000.0,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.Store(key, entry); err != nil {
		return nil, false, err
	}

	fiberlog.Debugf("response cache stored %s (model: %s, latency: %.0fms)", key[:12], model, entry.LatencyMS)
	return entry, false, nil
}
