package repository

import (
	"context"
	"fmt"

	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
)

// LibraryRepository defines the interface for library data operations
type LibraryRepository interface {
	Repository[models.Library]
	// ReplaceBooks makes bookIDs the library's complete book set.
	ReplaceBooks(ctx context.Context, library *models.Library, bookIDs []uint) error
}

type libraryRepository struct {
	*Store[models.Library]
}

// NewLibraryRepository creates a new library repository
func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{Store: NewStore[models.Library](db, "Library", "libraries", LibraryQuery)}
}

func (r *libraryRepository) ReplaceBooks(ctx context.Context, library *models.Library, bookIDs []uint) error {
	defer observability.TrackQuery("associate", "library_books")()
	assoc := r.Conn(ctx).Model(library).Omit("Books.*").Association("Books")

	if len(bookIDs) == 0 {
		if err := assoc.Clear(); err != nil {
			return fmt.Errorf("clear library %d books: %w", library.ID, err)
		}
		return nil
	}

	books := make([]models.Book, 0, len(bookIDs))
	for _, id := range bookIDs {
		books = append(books, models.Book{ID: id})
	}
	if err := assoc.Replace(books); err != nil {
		return fmt.Errorf("replace library %d books: %w", library.ID, err)
	}
	return nil
}
