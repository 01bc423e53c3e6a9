package api

import (
	"context"
	"time"

	"github.com/tahazakir/corpusqa/internal/services/database"
	"github.com/tahazakir/corpusqa/internal/services/vectorstore"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	store vectorstore.VectorStore
	db    *database.DB
}

// NewHealthHandler creates a health check handler. db may be nil.
func NewHealthHandler(store vectorstore.VectorStore, db *database.DB) *HealthHandler {
	return &HealthHandler{store: store, db: db}
}

// HealthCheck returns the health status of the service and its dependencies.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	vectorStatus := h.checkVectorStore()
	dbStatus := h.checkDatabase()

	overallStatus := "healthy"
	statusCode := fiber.StatusOK
	if vectorStatus != "healthy" || dbStatus == "unhealthy" {
		overallStatus = "degraded"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": fiber.Map{
			"vector_store": vectorStatus,
			"database":     dbStatus,
		},
	})
}

func (h *HealthHandler) checkVectorStore() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := h.store.Count(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

func (h *HealthHandler) checkDatabase() string {
	if h.db == nil {
		return "disabled"
	}
	if err := h.db.Ping(); err != nil {
		return "unhealthy"
	}
	return "healthy"
}
