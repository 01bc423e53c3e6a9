package main

import (
	"fmt"

	"github.com/tahazakir/corpusqa/internal/config"
	"github.com/tahazakir/corpusqa/internal/services/cache"
	"github.com/tahazakir/corpusqa/internal/services/database"
	"github.com/tahazakir/corpusqa/internal/services/embedding"
	"github.com/tahazakir/corpusqa/internal/services/generation"
	"github.com/tahazakir/corpusqa/internal/services/ingest"
	"github.com/tahazakir/corpusqa/internal/services/query"
	"github.com/tahazakir/corpusqa/internal/services/retrieval"
	"github.com/tahazakir/corpusqa/internal/services/runlog"
	"github.com/tahazakir/corpusqa/internal/services/vectorstore"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// app holds the wired service stack for CLI commands.
type app struct {
	cfg       *config.Config
	manifest  *ingest.Manifest
	embedder  embedding.Embedder
	store     vectorstore.VectorStore
	retrieval *retrieval.Service
	generator *generation.Generator
	pipeline  *query.Service
	db        *database.DB
}

// loadApp loads configuration and wires the service stack. replay
// overrides the configured cache mode when true.
func loadApp(configPath string, replay bool) (*app, error) {
	config.LoadEnvFiles([]string{".env.local", ".env.development", ".env"})

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if replay {
		cfg.Cache.Replay = true
	}

	manifest, err := ingest.LoadManifest(cfg.Corpus.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus manifest: %w", err)
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	store := vectorstore.NewQdrant(cfg.VectorStore)
	retrievalSvc := retrieval.NewService(embedder, store, manifest, cfg.Retrieval)

	fileStore, err := cache.NewFileStore(cfg.Cache.Dir)
	if err != nil {
		return nil, err
	}
	respCache := cache.New(fileStore, cfg.Cache.Replay)

	sender := generation.NewMessagesService(cfg.Generation)
	generator := generation.NewGenerator(cfg.Generation, sender, respCache)

	a := &app{
		cfg:       cfg,
		manifest:  manifest,
		embedder:  embedder,
		store:     store,
		retrieval: retrievalSvc,
		generator: generator,
	}

	var runLog *runlog.Service
	if cfg.Database != nil {
		db, err := database.New(*cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		runLog, err = runlog.NewService(db)
		if err != nil {
			return nil, err
		}
	}
	a.pipeline = query.NewService(retrievalSvc, generator, runLog)

	return a, nil
}

// close releases held connections.
func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			fiberlog.Errorf("Failed to close database connection: %v", err)
		}
	}
}
