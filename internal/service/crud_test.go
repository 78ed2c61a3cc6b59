package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"folio/internal/models"
	"folio/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBookRepository is a mock of the BookRepository interface
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) GetByID(ctx context.Context, id uint, preload ...string) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) Save(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookRepository) List(ctx context.Context, params query.Params, preload ...string) (query.Sequence[models.Book], error) {
	args := m.Called(ctx, params)
	return query.Sequence[models.Book]{}, args.Error(1)
}

func (m *MockBookRepository) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]uint), args.Error(1)
}

// inlineTx runs the unit of work without a database.
type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubValidator struct{}

func (stubValidator) Validate(any) error { return nil }
func (stubValidator) Now() time.Time     { return fixedNow }

func TestOrchestrator_StorageFailureIsInternal(t *testing.T) {
	storageErr := errors.New("connection reset by peer")
	librarian := models.Actor{UserID: 7, Role: models.RoleLibrarian}

	tests := []struct {
		name string
		prep func(m *MockBookRepository)
		run  func(s *BookService) error
	}{
		{
			name: "get",
			prep: func(m *MockBookRepository) {
				m.On("GetByID", mock.Anything, uint(1)).Return(nil, storageErr)
			},
			run: func(s *BookService) error {
				_, err := s.GetBook(context.Background(), models.Anonymous, 1)
				return err
			},
		},
		{
			name: "create",
			prep: func(m *MockBookRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(storageErr)
			},
			run: func(s *BookService) error {
				_, err := s.CreateBook(context.Background(), librarian, CreateBookInput{Title: "T", Author: "A"})
				return err
			},
		},
		{
			name: "delete",
			prep: func(m *MockBookRepository) {
				m.On("GetByID", mock.Anything, uint(3)).Return(&models.Book{ID: 3, Title: "T", Author: "A"}, nil)
				m.On("Delete", mock.Anything, uint(3)).Return(storageErr)
			},
			run: func(s *BookService) error {
				return s.DeleteBook(context.Background(), librarian, 3)
			},
		},
		{
			name: "list",
			prep: func(m *MockBookRepository) {
				m.On("List", mock.Anything, mock.Anything).Return(nil, storageErr)
			},
			run: func(s *BookService) error {
				_, err := s.ListBooks(context.Background(), models.Anonymous, query.Params{})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBookRepository)
			tt.prep(repo)
			s := NewBookService(repo, nil, inlineTx{}, stubValidator{})

			err := tt.run(s)

			appErr := requireCode(t, err, models.CodeInternal)
			assert.Equal(t, "Internal server error", appErr.Message)
			assert.ErrorIs(t, err, storageErr)
			repo.AssertExpectations(t)
		})
	}
}

func TestOrchestrator_DeniedCallsNeverTouchStorage(t *testing.T) {
	repo := new(MockBookRepository)
	s := NewBookService(repo, nil, inlineTx{}, stubValidator{})
	member := models.Actor{UserID: 3, Role: models.RoleMember}

	err := s.DeleteBook(context.Background(), member, 1)
	requireCode(t, err, models.CodeForbidden)

	_, err = s.UpdateBook(context.Background(), models.Anonymous, 1, UpdateBookInput{})
	requireCode(t, err, models.CodeUnauthorized)

	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestOrchestrator_CreateReloadsWithPreloads(t *testing.T) {
	repo := new(MockBookRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Book")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Book).ID = 42
		}).
		Return(nil)
	repo.On("GetByID", mock.Anything, uint(42)).Return(&models.Book{ID: 42, Title: "Stored"}, nil)

	s := NewBookService(repo, nil, inlineTx{}, stubValidator{})
	book, err := s.CreateBook(context.Background(), models.Actor{UserID: 1, Role: models.RoleMember}, CreateBookInput{Title: "Draft", Author: "A"})

	require.NoError(t, err)
	assert.Equal(t, "Stored", book.Title)
	repo.AssertExpectations(t)
}
