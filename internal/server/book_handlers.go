package server

import (
	"folio/internal/middleware"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListBooks handles GET /api/books
// @Summary List books
// @Description Filter by title, author, author_id or publication_year; search title and author; order by title or publication_year
// @Tags books
// @Produce json
// @Param search query string false "Search terms"
// @Param ordering query string false "e.g. -publication_year"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Book
// @Header 200 {integer} X-Total-Count "Total matching books"
// @Failure 400 {object} models.ErrorResponse
// @Router /books [get]
func (s *Server) ListBooks(c *fiber.Ctx) error {
	params, err := listParams(c)
	if err != nil {
		return nil
	}
	seq, err := s.bookService.ListBooks(c.UserContext(), middleware.ActorFrom(c), params)
	return respondList(c, seq, err)
}

// GetBook handles GET /api/books/:id
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} models.Book
// @Failure 404 {object} models.ErrorResponse
// @Router /books/{id} [get]
func (s *Server) GetBook(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	book, err := s.bookService.GetBook(c.UserContext(), middleware.ActorFrom(c), id)
	return respondOK(c, book, err)
}

// CreateBook handles POST /api/books
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Param request body service.CreateBookInput true "Book"
// @Success 201 {object} models.Book
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /books [post]
func (s *Server) CreateBook(c *fiber.Ctx) error {
	var req service.CreateBookInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	book, err := s.bookService.CreateBook(c.UserContext(), middleware.ActorFrom(c), req)
	return respondCreated(c, book, err)
}

// UpdateBook handles PUT and PATCH /api/books/:id. Only fields present in
// the body change.
// @Summary Update a book
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param request body service.UpdateBookInput true "Changed fields"
// @Success 200 {object} models.Book
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /books/{id} [put]
func (s *Server) UpdateBook(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateBookInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	book, err := s.bookService.UpdateBook(c.UserContext(), middleware.ActorFrom(c), id, req)
	return respondOK(c, book, err)
}

// DeleteBook handles DELETE /api/books/:id
// @Summary Delete a book
// @Tags books
// @Param id path int true "Book ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /books/{id} [delete]
func (s *Server) DeleteBook(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return respondDeleted(c, s.bookService.DeleteBook(c.UserContext(), middleware.ActorFrom(c), id))
}
