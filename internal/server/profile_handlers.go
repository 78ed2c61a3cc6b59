package server

import (
	"folio/internal/middleware"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profile/me
// @Summary Get the caller's profile
// @Tags profile
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profile/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetMyProfile(c.UserContext(), middleware.ActorFrom(c))
	return respondOK(c, profile, err)
}

// UpdateMyProfile handles PUT and PATCH /api/profile/me
// @Summary Update the caller's profile
// @Tags profile
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileInput true "Changed fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profile/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	profile, err := s.profileService.UpdateMyProfile(c.UserContext(), middleware.ActorFrom(c), req)
	return respondOK(c, profile, err)
}
