package service

import (
	"context"
	"strconv"

	"folio/internal/models"
	"folio/internal/query"
	"folio/internal/repository"
)

type CreateCommentInput struct {
	PostID  uint   `json:"-"`
	Content string `json:"content"`
}

type UpdateCommentInput struct {
	Content *string `json:"content"`
}

// CommentService manages comments nested under a post.
type CommentService struct {
	crud  *Orchestrator[models.Comment, *models.Comment, CreateCommentInput, UpdateCommentInput]
	posts repository.PostRepository
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	tx Transactor,
	valid Validator,
) *CommentService {
	s := &CommentService{posts: posts}
	s.crud = NewOrchestrator[models.Comment, *models.Comment](comments, tx, valid, Descriptor[models.Comment, CreateCommentInput, UpdateCommentInput]{
		Name:    "comment",
		Kind:    models.KindComment,
		Preload: []string{"User"},
		New: func(ctx context.Context, actor models.Actor, in CreateCommentInput) (*models.Comment, error) {
			if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
				return nil, err
			}
			return &models.Comment{
				Content: in.Content,
				UserID:  actor.UserID,
				PostID:  in.PostID,
			}, nil
		},
		Patch: func(_ context.Context, c *models.Comment, in UpdateCommentInput) error {
			if in.Content != nil {
				c.Content = *in.Content
			}
			return nil
		},
	})
	return s
}

// onPost reports a comment that belongs to another post as not found.
func onPost(postID uint) Guard[models.Comment] {
	return func(c *models.Comment) error {
		if c.PostID != postID {
			return models.NewNotFoundError("Comment", c.ID)
		}
		return nil
	}
}

func (s *CommentService) CreateComment(ctx context.Context, actor models.Actor, in CreateCommentInput) (*models.Comment, error) {
	return s.crud.Create(ctx, actor, in)
}

// ListComments lists a post's comments, oldest first by default.
func (s *CommentService) ListComments(ctx context.Context, actor models.Actor, postID uint, params query.Params) (query.Sequence[models.Comment], error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return query.Sequence[models.Comment]{}, err
	}
	return s.crud.List(ctx, actor, params.WithFilter("post_id", strconv.FormatUint(uint64(postID), 10)))
}

func (s *CommentService) GetComment(ctx context.Context, actor models.Actor, postID, id uint) (*models.Comment, error) {
	return s.crud.Get(ctx, actor, id, onPost(postID))
}

func (s *CommentService) UpdateComment(ctx context.Context, actor models.Actor, postID, id uint, in UpdateCommentInput) (*models.Comment, error) {
	return s.crud.Update(ctx, actor, id, in, onPost(postID))
}

func (s *CommentService) DeleteComment(ctx context.Context, actor models.Actor, postID, id uint) error {
	return s.crud.Delete(ctx, actor, id, onPost(postID))
}
