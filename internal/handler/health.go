package handler

import (
	"time"

	"quiz-forge/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler serves the liveness probe
type HealthHandler struct {
	now func() time.Time
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: time.Now}
}

// Health godoc
// @Summary Health check
// @Description Reports that the service is up. Does not call the completion API.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}
