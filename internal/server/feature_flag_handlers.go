package server

import (
	"folio/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/features
// @Summary Evaluate feature flags for the caller
// @Description Partial rollouts are evaluated per user and are off for anonymous callers.
// @Tags features
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)
	return c.JSON(fiber.Map{
		"evaluated": s.featureFlags.Snapshot(actor.UserID),
	})
}
