package service

import (
	"context"
	"strings"

	"folio/internal/models"
	"folio/internal/query"
	"folio/internal/repository"
)

type CreatePostInput struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Tags    TagList `json:"tags"`
}

// UpdatePostInput leaves tags untouched when Tags is absent; an empty list
// clears them.
type UpdatePostInput struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    *TagList `json:"tags"`
}

// PostService manages blog posts. Any authenticated user may post; only the
// author may edit or delete.
type PostService struct {
	crud  *Orchestrator[models.Post, *models.Post, CreatePostInput, UpdatePostInput]
	posts repository.PostRepository
	tags  repository.TagRepository
}

func NewPostService(
	posts repository.PostRepository,
	tags repository.TagRepository,
	tx Transactor,
	valid Validator,
) *PostService {
	s := &PostService{posts: posts, tags: tags}
	s.crud = NewOrchestrator[models.Post, *models.Post](posts, tx, valid, Descriptor[models.Post, CreatePostInput, UpdatePostInput]{
		Name:    "post",
		Kind:    models.KindPost,
		Preload: []string{"User", "Tags"},
		New: func(_ context.Context, actor models.Actor, in CreatePostInput) (*models.Post, error) {
			return &models.Post{
				Title:         strings.TrimSpace(in.Title),
				Content:       in.Content,
				UserID:        actor.UserID,
				PublishedDate: valid.Now(),
			}, nil
		},
		Patch: func(_ context.Context, p *models.Post, in UpdatePostInput) error {
			if in.Title != nil {
				p.Title = strings.TrimSpace(*in.Title)
			}
			if in.Content != nil {
				p.Content = *in.Content
			}
			return nil
		},
		AfterCreate: func(ctx context.Context, p *models.Post, in CreatePostInput) error {
			if len(in.Tags) == 0 {
				return nil
			}
			return s.setTags(ctx, p, in.Tags)
		},
		AfterUpdate: func(ctx context.Context, p *models.Post, in UpdatePostInput) error {
			if in.Tags == nil {
				return nil
			}
			return s.setTags(ctx, p, *in.Tags)
		},
		BeforeDelete: func(ctx context.Context, p *models.Post) error {
			if err := s.posts.DeleteComments(ctx, p.ID); err != nil {
				return err
			}
			return s.posts.ReplaceTags(ctx, p, nil)
		},
	})
	return s
}

// setTags resolves names to tags, creating missing ones, and makes them the
// post's complete tag set.
func (s *PostService) setTags(ctx context.Context, p *models.Post, names TagList) error {
	for _, name := range names {
		if err := s.crud.valid.Validate(models.Tag{Name: name}); err != nil {
			return models.NewFieldValidationError(map[string]string{"tags": "Ensure each tag has no more than 50 characters."})
		}
	}
	tags, err := s.tags.GetOrCreate(ctx, names)
	if err != nil {
		return err
	}
	return s.posts.ReplaceTags(ctx, p, tags)
}

func (s *PostService) CreatePost(ctx context.Context, actor models.Actor, in CreatePostInput) (*models.Post, error) {
	return s.crud.Create(ctx, actor, in)
}

func (s *PostService) GetPost(ctx context.Context, actor models.Actor, id uint) (*models.Post, error) {
	return s.crud.Get(ctx, actor, id)
}

func (s *PostService) ListPosts(ctx context.Context, actor models.Actor, params query.Params) (query.Sequence[models.Post], error) {
	return s.crud.List(ctx, actor, params)
}

func (s *PostService) UpdatePost(ctx context.Context, actor models.Actor, id uint, in UpdatePostInput) (*models.Post, error) {
	return s.crud.Update(ctx, actor, id, in)
}

// DeletePost removes the post with its comments and tag links.
func (s *PostService) DeletePost(ctx context.Context, actor models.Actor, id uint) error {
	return s.crud.Delete(ctx, actor, id)
}
