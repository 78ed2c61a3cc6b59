package repository

import (
	"context"
	"errors"
	"testing"

	"folio/internal/cache"
	"folio/internal/database"
	"folio/internal/database/dbtest"
	"folio/internal/models"
	"folio/internal/query"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CRUD(t *testing.T) {
	db := setupDB(t)
	repo := NewBookRepository(db, func() bool { return false })
	ctx := context.Background()

	book := &models.Book{Title: "The Hobbit", Author: "Tolkien", PublicationYear: 1937}
	require.NoError(t, repo.Create(ctx, book))
	require.NotZero(t, book.ID)

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", got.Title)

	got.Title = "The Hobbit, or There and Back Again"
	require.NoError(t, repo.Save(ctx, got))

	again, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit, or There and Back Again", again.Title)

	require.NoError(t, repo.Delete(ctx, book.ID))

	_, err = repo.GetByID(ctx, book.ID)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))

	err = repo.Delete(ctx, book.ID)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
	assert.EqualError(t, err, "Book with ID 1 not found")
}

func TestStore_List(t *testing.T) {
	db := setupDB(t)
	repo := NewBookRepository(db, nil)
	ctx := context.Background()

	for _, b := range []models.Book{
		{Title: "The Hobbit", Author: "Tolkien", PublicationYear: 1937},
		{Title: "Harry Potter", Author: "Rowling", PublicationYear: 1997},
	} {
		b := b
		require.NoError(t, repo.Create(ctx, &b))
	}

	seq, err := repo.List(ctx, query.Params{Search: "Hobbit"})
	require.NoError(t, err)
	books, err := seq.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "The Hobbit", books[0].Title)

	seq, err = repo.List(ctx, query.Params{Ordering: "-publication_year"})
	require.NoError(t, err)
	books, err = seq.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, 1997, books[0].PublicationYear)
}

func TestBookRepository_CacheAside(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := setupDB(t)
	enabled := true
	repo := NewBookRepository(db, func() bool { return enabled })
	ctx := context.Background()

	book := &models.Book{Title: "Dune", Author: "Herbert", PublicationYear: 1965}
	require.NoError(t, repo.Create(ctx, book))

	_, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.BookKey(book.ID)))

	// A stale row in the database is not seen while the cache entry lives.
	require.NoError(t, db.Model(&models.Book{}).Where("id = ?", book.ID).Update("title", "Dune Messiah").Error)
	cached, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", cached.Title)

	// Save invalidates.
	cached.Title = "Dune (Deluxe)"
	require.NoError(t, repo.Save(ctx, cached))
	assert.False(t, mr.Exists(cache.BookKey(book.ID)))

	// Reads inside a transaction skip the cache.
	txr := database.NewTransactor(db)
	require.NoError(t, txr.InTx(ctx, func(ctx context.Context) error {
		_, err := repo.GetByID(ctx, book.ID)
		return err
	}))
	assert.False(t, mr.Exists(cache.BookKey(book.ID)))

	// Disabled flag bypasses the cache.
	enabled = false
	_, err = repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.BookKey(book.ID)))

	enabled = true
	_, err = repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, book.ID))
	assert.False(t, mr.Exists(cache.BookKey(book.ID)))
}

func TestBookRepository_InvalidatesAfterCommit(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := dbtest.NewFile(t)
	repo := NewBookRepository(db, func() bool { return true })
	txr := database.NewTransactor(db)
	ctx := context.Background()

	hobbit := &models.Book{Title: "The Hobbit", Author: "Tolkien", PublicationYear: 1937}
	require.NoError(t, repo.Create(ctx, hobbit))

	err := txr.InTx(ctx, func(txCtx context.Context) error {
		if err := repo.Delete(txCtx, hobbit.ID); err != nil {
			return err
		}
		// A concurrent request still sees the committed row and caches it.
		stale, err := repo.GetByID(ctx, hobbit.ID)
		require.NoError(t, err)
		assert.Equal(t, "The Hobbit", stale.Title)
		assert.True(t, mr.Exists(cache.BookKey(hobbit.ID)))
		return nil
	})
	require.NoError(t, err)

	assert.False(t, mr.Exists(cache.BookKey(hobbit.ID)))
	_, err = repo.GetByID(ctx, hobbit.ID)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))

	// A rolled-back update leaves the cached copy in place.
	dune := &models.Book{Title: "Dune", Author: "Herbert", PublicationYear: 1965}
	require.NoError(t, repo.Create(ctx, dune))
	_, err = repo.GetByID(ctx, dune.ID)
	require.NoError(t, err)

	err = txr.InTx(ctx, func(txCtx context.Context) error {
		dune.Title = "Dune Messiah"
		if err := repo.Save(txCtx, dune); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")
	assert.True(t, mr.Exists(cache.BookKey(dune.ID)))

	got, err := repo.GetByID(ctx, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
}

func TestBookRepository_ExistingIDs(t *testing.T) {
	db := setupDB(t)
	repo := NewBookRepository(db, nil)
	ctx := context.Background()

	book := &models.Book{Title: "Emma", Author: "Austen"}
	require.NoError(t, repo.Create(ctx, book))

	found, err := repo.ExistingIDs(ctx, []uint{book.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, []uint{book.ID}, found)

	found, err = repo.ExistingIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestStore_StorageFailures(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT (.+) FROM "comments"`).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := repo.GetByID(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, models.CodeInternal, models.CodeOf(err))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "comments"`).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	err = repo.Delete(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, models.CodeInternal, models.CodeOf(err))
	assert.Contains(t, err.Error(), "delete comments 1")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "comments"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err = repo.Delete(ctx, 2)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UniqueViolationIsConflict(t *testing.T) {
	db := setupDB(t)
	repo := NewLibraryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Library{Name: "Central"}))
	err := repo.Create(ctx, &models.Library{Name: "Central"})
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, models.CodeOf(err))
	assert.Equal(t, "Library already exists", models.AsAppError(err).Message)
}
