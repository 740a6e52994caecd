package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/recorre/indie-comments-cloud/internal/config"
	"github.com/recorre/indie-comments-cloud/internal/services"
)

// HealthHandler reports service health.
type HealthHandler struct {
	Cfg *config.Config
}

// Check handles GET /health
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg)
	status := fiber.StatusOK
	if result.Status == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
