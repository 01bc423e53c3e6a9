// Package api contains the Fiber HTTP handlers.
package api

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/tahazakir/corpusqa/internal/models"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const (
	requestIDLocalKey  = "request_id"
	maxRequestIDLength = 256
)

// requestID returns the request's ID, honoring an X-Request-ID header
// and generating one otherwise. The result is cached in fiber locals.
func requestID(c *fiber.Ctx) string {
	if cached := c.Locals(requestIDLocalKey); cached != nil {
		if str, ok := cached.(string); ok && str != "" {
			return str
		}
	}

	id := strings.TrimSpace(c.Get("X-Request-ID"))
	if len(id) > maxRequestIDLength {
		id = id[:maxRequestIDLength]
	}
	if id == "" {
		id = generateRequestID()
	}

	c.Locals(requestIDLocalKey, id)
	return id
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "req_unknown"
	}
	return "req_" + hex.EncodeToString(bytes)
}

// respondError sanitizes err and writes it as a JSON error response.
func respondError(c *fiber.Ctx, err error, reqID string) error {
	sanitized := models.SanitizeError(err)
	fiberlog.Errorf("[%s] %s error: %v", reqID, sanitized.Type, err)
	return c.Status(sanitized.GetStatusCode()).JSON(fiber.Map{"error": sanitized})
}

// respondBadRequest writes a validation error response.
func respondBadRequest(c *fiber.Ctx, message, reqID string) error {
	fiberlog.Warnf("[%s] Bad request: %s", reqID, message)
	return respondError(c, models.NewValidationError(message, nil), reqID)
}
