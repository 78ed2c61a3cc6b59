package repository

import (
	"context"
	"fmt"

	"folio/internal/cache"
	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
)

// BookRepository defines the interface for book data operations
type BookRepository interface {
	Repository[models.Book]
	// ExistingIDs returns the subset of ids that refer to stored books.
	ExistingIDs(ctx context.Context, ids []uint) ([]uint, error)
}

type bookRepository struct {
	*Store[models.Book]
}

// NewBookRepository creates a new book repository. Detail reads go through
// the Redis cache while cacheEnabled reports true.
func NewBookRepository(db *gorm.DB, cacheEnabled func() bool) BookRepository {
	return &bookRepository{
		Store: NewStore[models.Book](db, "Book", "books", BookQuery,
			WithCache(cache.BookKey, cache.BookTTL, cacheEnabled)),
	}
}

func (r *bookRepository) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	defer observability.TrackQuery("select", "books")()
	var found []uint
	if err := r.Conn(ctx).Model(&models.Book{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("lookup books: %w", err)
	}
	return found, nil
}
