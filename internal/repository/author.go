package repository

import (
	"context"
	"fmt"

	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
)

// AuthorRepository defines the interface for author data operations
type AuthorRepository interface {
	Repository[models.Author]
	// DetachBooks clears author_id on every book linked to the author.
	DetachBooks(ctx context.Context, authorID uint) error
}

type authorRepository struct {
	*Store[models.Author]
}

// NewAuthorRepository creates a new author repository
func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{Store: NewStore[models.Author](db, "Author", "authors", AuthorQuery)}
}

func (r *authorRepository) DetachBooks(ctx context.Context, authorID uint) error {
	defer observability.TrackQuery("update", "books")()
	err := r.Conn(ctx).Model(&models.Book{}).
		Where("author_id = ?", authorID).
		Update("author_id", nil).Error
	if err != nil {
		return fmt.Errorf("detach books from author %d: %w", authorID, err)
	}
	return nil
}
