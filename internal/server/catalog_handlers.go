package server

import (
	"folio/internal/middleware"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListAuthors handles GET /api/authors
// @Summary List authors
// @Tags authors
// @Produce json
// @Success 200 {array} models.Author
// @Router /authors [get]
func (s *Server) ListAuthors(c *fiber.Ctx) error {
	params, err := listParams(c)
	if err != nil {
		return nil
	}
	seq, err := s.authorService.ListAuthors(c.UserContext(), middleware.ActorFrom(c), params)
	return respondList(c, seq, err)
}

// GetAuthor handles GET /api/authors/:id. The author's books are included.
// @Summary Get an author with books
// @Tags authors
// @Produce json
// @Param id path int true "Author ID"
// @Success 200 {object} models.Author
// @Failure 404 {object} models.ErrorResponse
// @Router /authors/{id} [get]
func (s *Server) GetAuthor(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	author, err := s.authorService.GetAuthor(c.UserContext(), middleware.ActorFrom(c), id)
	return respondOK(c, author, err)
}

// CreateAuthor handles POST /api/authors
// @Summary Create an author
// @Tags authors
// @Accept json
// @Produce json
// @Param request body service.CreateAuthorInput true "Author"
// @Success 201 {object} models.Author
// @Security BearerAuth
// @Router /authors [post]
func (s *Server) CreateAuthor(c *fiber.Ctx) error {
	var req service.CreateAuthorInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	author, err := s.authorService.CreateAuthor(c.UserContext(), middleware.ActorFrom(c), req)
	return respondCreated(c, author, err)
}

// UpdateAuthor handles PUT and PATCH /api/authors/:id
// @Summary Update an author
// @Tags authors
// @Accept json
// @Produce json
// @Param id path int true "Author ID"
// @Param request body service.UpdateAuthorInput true "Changed fields"
// @Success 200 {object} models.Author
// @Security BearerAuth
// @Router /authors/{id} [put]
func (s *Server) UpdateAuthor(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateAuthorInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	author, err := s.authorService.UpdateAuthor(c.UserContext(), middleware.ActorFrom(c), id, req)
	return respondOK(c, author, err)
}

// DeleteAuthor handles DELETE /api/authors/:id. Books keep their display
// author name but lose the link.
// @Summary Delete an author
// @Tags authors
// @Param id path int true "Author ID"
// @Success 204
// @Security BearerAuth
// @Router /authors/{id} [delete]
func (s *Server) DeleteAuthor(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return respondDeleted(c, s.authorService.DeleteAuthor(c.UserContext(), middleware.ActorFrom(c), id))
}

// ListLibraries handles GET /api/libraries
// @Summary List libraries
// @Tags libraries
// @Produce json
// @Success 200 {array} models.Library
// @Router /libraries [get]
func (s *Server) ListLibraries(c *fiber.Ctx) error {
	params, err := listParams(c)
	if err != nil {
		return nil
	}
	seq, err := s.libraryService.ListLibraries(c.UserContext(), middleware.ActorFrom(c), params)
	return respondList(c, seq, err)
}

// GetLibrary handles GET /api/libraries/:id
// @Summary Get a library with books
// @Tags libraries
// @Produce json
// @Param id path int true "Library ID"
// @Success 200 {object} models.Library
// @Router /libraries/{id} [get]
func (s *Server) GetLibrary(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	library, err := s.libraryService.GetLibrary(c.UserContext(), middleware.ActorFrom(c), id)
	return respondOK(c, library, err)
}

// CreateLibrary handles POST /api/libraries
// @Summary Create a library
// @Tags libraries
// @Accept json
// @Produce json
// @Param request body service.CreateLibraryInput true "Library"
// @Success 201 {object} models.Library
// @Security BearerAuth
// @Router /libraries [post]
func (s *Server) CreateLibrary(c *fiber.Ctx) error {
	var req service.CreateLibraryInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	library, err := s.libraryService.CreateLibrary(c.UserContext(), middleware.ActorFrom(c), req)
	return respondCreated(c, library, err)
}

// UpdateLibrary handles PUT and PATCH /api/libraries/:id. A book_ids field
// replaces the library's whole book set.
// @Summary Update a library
// @Tags libraries
// @Accept json
// @Produce json
// @Param id path int true "Library ID"
// @Param request body service.UpdateLibraryInput true "Changed fields"
// @Success 200 {object} models.Library
// @Security BearerAuth
// @Router /libraries/{id} [put]
func (s *Server) UpdateLibrary(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateLibraryInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	library, err := s.libraryService.UpdateLibrary(c.UserContext(), middleware.ActorFrom(c), id, req)
	return respondOK(c, library, err)
}

// DeleteLibrary handles DELETE /api/libraries/:id
// @Summary Delete a library
// @Tags libraries
// @Param id path int true "Library ID"
// @Success 204
// @Security BearerAuth
// @Router /libraries/{id} [delete]
func (s *Server) DeleteLibrary(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return respondDeleted(c, s.libraryService.DeleteLibrary(c.UserContext(), middleware.ActorFrom(c), id))
}
