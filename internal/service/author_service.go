package service

import (
	"context"
	"strings"

	"folio/internal/models"
	"folio/internal/query"
	"folio/internal/repository"
)

type CreateAuthorInput struct {
	Name string `json:"name"`
}

type UpdateAuthorInput struct {
	Name *string `json:"name"`
}

// AuthorService serves authors with their books. Deleting an author keeps
// the books and clears their author link.
type AuthorService struct {
	crud    *Orchestrator[models.Author, *models.Author, CreateAuthorInput, UpdateAuthorInput]
	authors repository.AuthorRepository
}

func NewAuthorService(authors repository.AuthorRepository, tx Transactor, valid Validator) *AuthorService {
	s := &AuthorService{authors: authors}
	s.crud = NewOrchestrator[models.Author, *models.Author](authors, tx, valid, Descriptor[models.Author, CreateAuthorInput, UpdateAuthorInput]{
		Name:    "author",
		Kind:    models.KindAuthor,
		Preload: []string{"Books"},
		New: func(_ context.Context, _ models.Actor, in CreateAuthorInput) (*models.Author, error) {
			return &models.Author{Name: strings.TrimSpace(in.Name)}, nil
		},
		Patch: func(_ context.Context, a *models.Author, in UpdateAuthorInput) error {
			if in.Name != nil {
				a.Name = strings.TrimSpace(*in.Name)
			}
			return nil
		},
		BeforeDelete: func(ctx context.Context, a *models.Author) error {
			return s.authors.DetachBooks(ctx, a.ID)
		},
	})
	return s
}

func (s *AuthorService) CreateAuthor(ctx context.Context, actor models.Actor, in CreateAuthorInput) (*models.Author, error) {
	return s.crud.Create(ctx, actor, in)
}

func (s *AuthorService) GetAuthor(ctx context.Context, actor models.Actor, id uint) (*models.Author, error) {
	return s.crud.Get(ctx, actor, id)
}

func (s *AuthorService) ListAuthors(ctx context.Context, actor models.Actor, params query.Params) (query.Sequence[models.Author], error) {
	return s.crud.List(ctx, actor, params)
}

func (s *AuthorService) UpdateAuthor(ctx context.Context, actor models.Actor, id uint, in UpdateAuthorInput) (*models.Author, error) {
	return s.crud.Update(ctx, actor, id, in)
}

func (s *AuthorService) DeleteAuthor(ctx context.Context, actor models.Actor, id uint) error {
	return s.crud.Delete(ctx, actor, id)
}
