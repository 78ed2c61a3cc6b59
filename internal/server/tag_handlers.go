package server

import (
	"folio/internal/middleware"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListTags handles GET /api/tags
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Router /tags [get]
func (s *Server) ListTags(c *fiber.Ctx) error {
	params, err := listParams(c)
	if err != nil {
		return nil
	}
	seq, err := s.tagService.ListTags(c.UserContext(), middleware.ActorFrom(c), params)
	return respondList(c, seq, err)
}

// GetTag handles GET /api/tags/:id
func (s *Server) GetTag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	tag, err := s.tagService.GetTag(c.UserContext(), middleware.ActorFrom(c), id)
	return respondOK(c, tag, err)
}

// CreateTag handles POST /api/tags (admin)
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Param request body service.CreateTagInput true "Tag"
// @Success 201 {object} models.Tag
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /tags [post]
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req service.CreateTagInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	tag, err := s.tagService.CreateTag(c.UserContext(), middleware.ActorFrom(c), req)
	return respondCreated(c, tag, err)
}

// DeleteTag handles DELETE /api/tags/:id (admin)
// @Summary Delete a tag
// @Tags tags
// @Param id path int true "Tag ID"
// @Success 204
// @Security BearerAuth
// @Router /tags/{id} [delete]
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return respondDeleted(c, s.tagService.DeleteTag(c.UserContext(), middleware.ActorFrom(c), id))
}
