package service

import (
	"context"
	"slices"
	"strings"

	"folio/internal/models"
	"folio/internal/query"
	"folio/internal/repository"
)

type CreateLibraryInput struct {
	Name    string `json:"name"`
	BookIDs []uint `json:"book_ids"`
}

// UpdateLibraryInput replaces the book set only when BookIDs is present.
type UpdateLibraryInput struct {
	Name    *string `json:"name"`
	BookIDs *[]uint `json:"book_ids"`
}

type LibraryService struct {
	crud      *Orchestrator[models.Library, *models.Library, CreateLibraryInput, UpdateLibraryInput]
	libraries repository.LibraryRepository
	books     repository.BookRepository
}

func NewLibraryService(
	libraries repository.LibraryRepository,
	books repository.BookRepository,
	tx Transactor,
	valid Validator,
) *LibraryService {
	s := &LibraryService{libraries: libraries, books: books}
	s.crud = NewOrchestrator[models.Library, *models.Library](libraries, tx, valid, Descriptor[models.Library, CreateLibraryInput, UpdateLibraryInput]{
		Name:    "library",
		Kind:    models.KindLibrary,
		Preload: []string{"Books"},
		New: func(_ context.Context, _ models.Actor, in CreateLibraryInput) (*models.Library, error) {
			return &models.Library{Name: strings.TrimSpace(in.Name)}, nil
		},
		Patch: func(_ context.Context, l *models.Library, in UpdateLibraryInput) error {
			if in.Name != nil {
				l.Name = strings.TrimSpace(*in.Name)
			}
			return nil
		},
		AfterCreate: func(ctx context.Context, l *models.Library, in CreateLibraryInput) error {
			if len(in.BookIDs) == 0 {
				return nil
			}
			return s.replaceBooks(ctx, l, in.BookIDs)
		},
		AfterUpdate: func(ctx context.Context, l *models.Library, in UpdateLibraryInput) error {
			if in.BookIDs == nil {
				return nil
			}
			return s.replaceBooks(ctx, l, *in.BookIDs)
		},
		BeforeDelete: func(ctx context.Context, l *models.Library) error {
			return s.libraries.ReplaceBooks(ctx, l, nil)
		},
	})
	return s
}

// replaceBooks rejects ids that do not name a stored book before replacing
// the set.
func (s *LibraryService) replaceBooks(ctx context.Context, l *models.Library, ids []uint) error {
	ids = dedupeIDs(ids)
	found, err := s.books.ExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !slices.Contains(found, id) {
			return models.NewFieldValidationError(map[string]string{"book_ids": invalidPK(id)})
		}
	}
	return s.libraries.ReplaceBooks(ctx, l, ids)
}

func dedupeIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *LibraryService) CreateLibrary(ctx context.Context, actor models.Actor, in CreateLibraryInput) (*models.Library, error) {
	return s.crud.Create(ctx, actor, in)
}

func (s *LibraryService) GetLibrary(ctx context.Context, actor models.Actor, id uint) (*models.Library, error) {
	return s.crud.Get(ctx, actor, id)
}

func (s *LibraryService) ListLibraries(ctx context.Context, actor models.Actor, params query.Params) (query.Sequence[models.Library], error) {
	return s.crud.List(ctx, actor, params)
}

func (s *LibraryService) UpdateLibrary(ctx context.Context, actor models.Actor, id uint, in UpdateLibraryInput) (*models.Library, error) {
	return s.crud.Update(ctx, actor, id, in)
}

func (s *LibraryService) DeleteLibrary(ctx context.Context, actor models.Actor, id uint) error {
	return s.crud.Delete(ctx, actor, id)
}
