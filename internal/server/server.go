// Package server assembles the HTTP application: infrastructure,
// services, middleware, routes, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/tahazakir/corpusqa/internal/api"
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

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Server is one corpusqa HTTP server instance.
type Server struct {
	config *config.Config
	app    *fiber.App
	db     *database.DB
}

type services struct {
	store     vectorstore.VectorStore
	manifest  *ingest.Manifest
	retrieval *retrieval.Service
	generator *generation.Generator
	pipeline  *query.Service
	runLog    *runlog.Service
}

// New creates a Server instance with the given configuration. The cfg
// parameter is required and must not be nil.
func New(cfg *config.Config) *Server {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() to create config")
	}
	return &Server{config: cfg}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogLevel(s.config)

	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}
	listenAddr := ":" + port

	s.app = createFiberApp(s.config)

	if s.config.Database != nil {
		db, err := database.New(*s.config.Database)
		if err != nil {
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		fiberlog.Infof("Database (%s) initialized successfully", db.DriverName())
		defer func() {
			if err := s.db.Close(); err != nil {
				fiberlog.Errorf("Failed to close database connection: %v", err)
			}
		}()
	} else {
		fiberlog.Info("Database not configured - run logging disabled")
	}

	svcs, err := initializeServices(s.config, s.db)
	if err != nil {
		return err
	}

	setupMiddleware(s.app, s.config)
	setupRoutes(s.app, svcs, s.db)
	s.app.Get("/", welcomeHandler())

	fmt.Printf("corpusqa starting on %s\n", listenAddr)
	fmt.Printf("   Environment: %s\n", s.config.Server.Environment)
	fmt.Printf("   Go version: %s\n", runtime.Version())
	fmt.Printf("   Replay mode: %t\n", s.config.Cache.Replay)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(listenAddr); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fiberlog.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		fiberlog.Info("Context cancelled, starting shutdown...")
	}

	fiberlog.Info("Server shutting down gracefully...")
	if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	fiberlog.Info("Server shutdown completed successfully")

	return nil
}

// initializeServices wires the retrieval and generation stack. Every
// handler shares the same embedder, vector store, and response cache.
func initializeServices(cfg *config.Config, db *database.DB) (*services, error) {
	manifest, err := ingest.LoadManifest(cfg.Corpus.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus manifest: %w", err)
	}
	fiberlog.Infof("Corpus manifest loaded: %d sources", len(manifest.Sources))

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store := vectorstore.NewQdrant(cfg.VectorStore)
	retrievalSvc := retrieval.NewService(embedder, store, manifest, cfg.Retrieval)

	fileStore, err := cache.NewFileStore(cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}
	respCache := cache.New(fileStore, cfg.Cache.Replay)
	if cfg.Cache.Replay {
		fiberlog.Info("Response cache in replay mode - live model calls disabled")
	}

	sender := generation.NewMessagesService(cfg.Generation)
	generator := generation.NewGenerator(cfg.Generation, sender, respCache)

	var runLog *runlog.Service
	if db != nil {
		runLog, err = runlog.NewService(db)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize run log: %w", err)
		}
	}

	return &services{
		store:     store,
		manifest:  manifest,
		retrieval: retrievalSvc,
		generator: generator,
		pipeline:  query.NewService(retrievalSvc, generator, runLog),
		runLog:    runLog,
	}, nil
}

func createFiberApp(cfg *config.Config) *fiber.App {
	isProd := cfg.IsProduction()

	return fiber.New(fiber.Config{
		AppName:           "corpusqa v1.0",
		EnablePrintRoutes: !isProd,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		CaseSensitive:     true,
		ServerHeader:      "corpusqa",
	})
}

func setupMiddleware(app *fiber.App, cfg *config.Config) {
	isProd := cfg.IsProduction()

	// Recover middleware (must be first)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:               300,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	// Per-request timeout; generation calls can be slow.
	app.Use(func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Minute)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	})

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if isProd {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} ${bytesSent}b\n",
			Output: os.Stdout,
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			Output: os.Stdout,
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, OPTIONS",
		MaxAge:        86400,
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID",
	}))
}

func setupRoutes(app *fiber.App, svcs *services, db *database.DB) {
	healthHandler := api.NewHealthHandler(svcs.store, db)
	app.Get("/health", healthHandler.HealthCheck)

	queryHandler := api.NewQueryHandler(svcs.pipeline)
	artifactHandler := api.NewArtifactHandler(svcs.retrieval, svcs.generator, svcs.manifest)
	corpusHandler := api.NewCorpusHandler(svcs.manifest, svcs.store)
	runsHandler := api.NewRunsHandler(svcs.runLog)
	exportHandler := api.NewExportHandler()

	v1 := app.Group("/v1")
	v1.Post("/query", queryHandler.Query)
	v1.Post("/artifacts", artifactHandler.Artifacts)
	v1.Get("/corpus", corpusHandler.Corpus)
	v1.Get("/runs", runsHandler.Runs)
	v1.Post("/export", exportHandler.Export)
}

func setupLogLevel(cfg *config.Config) {
	logLevel := cfg.GetNormalizedLogLevel()

	switch logLevel {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
		if logLevel != "" {
			fiberlog.Warnf("Unknown log level '%s', defaulting to 'info'", logLevel)
		}
	}
}

func welcomeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":    "Welcome to corpusqa!",
			"version":    "1.0.0",
			"go_version": runtime.Version(),
			"status":     "running",
			"endpoints": fiber.Map{
				"query":     "/v1/query",
				"artifacts": "/v1/artifacts",
				"corpus":    "/v1/corpus",
				"runs":      "/v1/runs",
				"export":    "/v1/export",
				"health":    "/health",
			},
		})
	}
}
