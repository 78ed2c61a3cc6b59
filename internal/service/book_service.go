package service

import (
	"context"
	"strings"
	"time"

	"folio/internal/models"
	"folio/internal/query"
	"folio/internal/repository"
)

type CreateBookInput struct {
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	AuthorID        *uint      `json:"author_id"`
	PublicationYear int        `json:"publication_year"`
	Description     string     `json:"description"`
	PublishedAt     *time.Time `json:"published_at"`
}

// UpdateBookInput carries only the fields present in the request.
type UpdateBookInput struct {
	Title           *string    `json:"title"`
	Author          *string    `json:"author"`
	AuthorID        *uint      `json:"author_id"`
	PublicationYear *int       `json:"publication_year"`
	Description     *string    `json:"description"`
	PublishedAt     *time.Time `json:"published_at"`
}

type BookService struct {
	crud    *Orchestrator[models.Book, *models.Book, CreateBookInput, UpdateBookInput]
	authors repository.AuthorRepository
}

func NewBookService(
	books repository.BookRepository,
	authors repository.AuthorRepository,
	tx Transactor,
	valid Validator,
) *BookService {
	s := &BookService{authors: authors}
	s.crud = NewOrchestrator[models.Book, *models.Book](books, tx, valid, Descriptor[models.Book, CreateBookInput, UpdateBookInput]{
		Name:  "book",
		Kind:  models.KindBook,
		New:   s.newBook,
		Patch: s.patchBook,
	})
	return s
}

func (s *BookService) newBook(ctx context.Context, actor models.Actor, in CreateBookInput) (*models.Book, error) {
	book := &models.Book{
		Title:           strings.TrimSpace(in.Title),
		Author:          strings.TrimSpace(in.Author),
		PublicationYear: in.PublicationYear,
		Description:     in.Description,
		PublishedAt:     in.PublishedAt,
	}
	if actor.Authenticated() {
		createdBy := actor.UserID
		book.CreatedByID = &createdBy
	}
	if err := s.linkAuthor(ctx, book, in.AuthorID); err != nil {
		return nil, err
	}
	return book, nil
}

// blockedTitleWord may not appear in a renamed book's title, in any case.
const blockedTitleWord = "forbidden"

func (s *BookService) patchBook(ctx context.Context, book *models.Book, in UpdateBookInput) error {
	if in.Title != nil {
		if strings.Contains(strings.ToLower(*in.Title), blockedTitleWord) {
			return models.NewFieldValidationError(map[string]string{
				"title": "This title is not allowed.",
			})
		}
		book.Title = strings.TrimSpace(*in.Title)
	}
	if in.Author != nil {
		book.Author = strings.TrimSpace(*in.Author)
	}
	if in.PublicationYear != nil {
		book.PublicationYear = *in.PublicationYear
	}
	if in.Description != nil {
		book.Description = *in.Description
	}
	if in.PublishedAt != nil {
		book.PublishedAt = in.PublishedAt
	}
	if in.AuthorID != nil {
		return s.linkAuthor(ctx, book, in.AuthorID)
	}
	return nil
}

// linkAuthor points book at an existing author. An empty display name is
// filled from the linked author.
func (s *BookService) linkAuthor(ctx context.Context, book *models.Book, authorID *uint) error {
	if authorID == nil {
		return nil
	}
	if *authorID == 0 {
		book.AuthorID = nil
		return nil
	}
	author, err := s.authors.GetByID(ctx, *authorID)
	if err != nil {
		if models.CodeOf(err) == models.CodeNotFound {
			return models.NewFieldValidationError(map[string]string{
				"author_id": invalidPK(*authorID),
			})
		}
		return err
	}
	id := author.ID
	book.AuthorID = &id
	if book.Author == "" {
		book.Author = author.Name
	}
	return nil
}

func (s *BookService) CreateBook(ctx context.Context, actor models.Actor, in CreateBookInput) (*models.Book, error) {
	return s.crud.Create(ctx, actor, in)
}

func (s *BookService) GetBook(ctx context.Context, actor models.Actor, id uint) (*models.Book, error) {
	return s.crud.Get(ctx, actor, id)
}

func (s *BookService) ListBooks(ctx context.Context, actor models.Actor, params query.Params) (query.Sequence[models.Book], error) {
	return s.crud.List(ctx, actor, params)
}

func (s *BookService) UpdateBook(ctx context.Context, actor models.Actor, id uint, in UpdateBookInput) (*models.Book, error) {
	return s.crud.Update(ctx, actor, id, in)
}

func (s *BookService) DeleteBook(ctx context.Context, actor models.Actor, id uint) error {
	return s.crud.Delete(ctx, actor, id)
}
