package repository

import (
	"folio/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations. Listing per
// post uses the post_id filter.
type CommentRepository interface {
	Repository[models.Comment]
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return NewStore[models.Comment](db, "Comment", "comments", CommentQuery)
}
