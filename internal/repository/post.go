package repository

import (
	"context"
	"fmt"

	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Repository[models.Post]
	// ReplaceTags makes tags the post's complete tag set.
	ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error
	// DeleteComments removes every comment on the post.
	DeleteComments(ctx context.Context, postID uint) error
}

type postRepository struct {
	*Store[models.Post]
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{Store: NewStore[models.Post](db, "Post", "posts", PostQuery)}
}

func (r *postRepository) ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	defer observability.TrackQuery("associate", "post_tags")()
	assoc := r.Conn(ctx).Model(post).Omit("Tags.*").Association("Tags")

	var err error
	if len(tags) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(tags)
	}
	if err != nil {
		return fmt.Errorf("replace post %d tags: %w", post.ID, err)
	}
	return nil
}

func (r *postRepository) DeleteComments(ctx context.Context, postID uint) error {
	defer observability.TrackQuery("delete", "comments")()
	if err := r.Conn(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
		return fmt.Errorf("delete comments of post %d: %w", postID, err)
	}
	return nil
}
