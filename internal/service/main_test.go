package service

import (
	"testing"
	"time"

	"folio/internal/database"
	"folio/internal/database/dbtest"
	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/validation"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db *gorm.DB

	bookRepo repository.BookRepository
	postRepo repository.PostRepository
	tagRepo  repository.TagRepository
	tx       *database.Transactor
	valid    *validation.Validator

	books     *BookService
	authors   *AuthorService
	libraries *LibraryService
	posts     *PostService
	comments  *CommentService
	tags      *TagService
	profiles  *ProfileService

	admin     models.Actor
	librarian models.Actor
	member    models.Actor
	other     models.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)
	f := &fixture{
		db:       db,
		bookRepo: repository.NewBookRepository(db, func() bool { return false }),
		postRepo: repository.NewPostRepository(db),
		tagRepo:  repository.NewTagRepository(db),
		tx:       database.NewTransactor(db),
		valid:    validation.New(validation.WithClock(func() time.Time { return fixedNow })),
	}
	authorRepo := repository.NewAuthorRepository(db)

	f.books = NewBookService(f.bookRepo, authorRepo, f.tx, f.valid)
	f.authors = NewAuthorService(authorRepo, f.tx, f.valid)
	f.libraries = NewLibraryService(repository.NewLibraryRepository(db), f.bookRepo, f.tx, f.valid)
	f.posts = NewPostService(f.postRepo, f.tagRepo, f.tx, f.valid)
	f.comments = NewCommentService(repository.NewCommentRepository(db), f.postRepo, f.tx, f.valid)
	f.tags = NewTagService(f.tagRepo, f.tx, f.valid)
	f.profiles = NewProfileService(repository.NewProfileRepository(db), f.tx, f.valid)

	f.admin = createActor(t, db, "admin", models.RoleAdmin)
	f.librarian = createActor(t, db, "librarian", models.RoleLibrarian)
	f.member = createActor(t, db, "alice", models.RoleMember)
	f.other = createActor(t, db, "bob", models.RoleMember)
	return f
}

func createActor(t *testing.T, db *gorm.DB, username string, role models.Role) models.Actor {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	return models.ActorFor(u)
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }

func requireCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := models.AsAppError(err)
	require.Equal(t, code, appErr.Code, "error: %v", err)
	return appErr
}
