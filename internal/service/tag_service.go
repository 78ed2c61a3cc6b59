package service

import (
	"context"

	"folio/internal/models"
	"folio/internal/query"
	"folio/internal/repository"
)

type CreateTagInput struct {
	Name string `json:"name"`
}

type UpdateTagInput struct {
	Name *string `json:"name"`
}

// TagService exposes the shared tag vocabulary. Tags are normally created
// implicitly by posts; direct creation and deletion are admin operations.
type TagService struct {
	crud *Orchestrator[models.Tag, *models.Tag, CreateTagInput, UpdateTagInput]
	tags repository.TagRepository
}

func NewTagService(tags repository.TagRepository, tx Transactor, valid Validator) *TagService {
	s := &TagService{tags: tags}
	s.crud = NewOrchestrator[models.Tag, *models.Tag](tags, tx, valid, Descriptor[models.Tag, CreateTagInput, UpdateTagInput]{
		Name: "tag",
		Kind: models.KindTag,
		New: func(_ context.Context, _ models.Actor, in CreateTagInput) (*models.Tag, error) {
			return &models.Tag{Name: in.Name}, nil
		},
		Patch: func(_ context.Context, t *models.Tag, in UpdateTagInput) error {
			if in.Name != nil {
				t.Name = *in.Name
			}
			return nil
		},
		BeforeDelete: func(ctx context.Context, t *models.Tag) error {
			return s.tags.DetachPosts(ctx, t.ID)
		},
	})
	return s
}

func (s *TagService) CreateTag(ctx context.Context, actor models.Actor, in CreateTagInput) (*models.Tag, error) {
	return s.crud.Create(ctx, actor, in)
}

func (s *TagService) GetTag(ctx context.Context, actor models.Actor, id uint) (*models.Tag, error) {
	return s.crud.Get(ctx, actor, id)
}

func (s *TagService) ListTags(ctx context.Context, actor models.Actor, params query.Params) (query.Sequence[models.Tag], error) {
	return s.crud.List(ctx, actor, params)
}

// UpdateTag renames a tag. No role is granted this, so it always ends in an
// access error; it exists so the policy, not the router, decides.
func (s *TagService) UpdateTag(ctx context.Context, actor models.Actor, id uint, in UpdateTagInput) (*models.Tag, error) {
	return s.crud.Update(ctx, actor, id, in)
}

func (s *TagService) DeleteTag(ctx context.Context, actor models.Actor, id uint) error {
	return s.crud.Delete(ctx, actor, id)
}
