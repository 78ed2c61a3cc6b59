package repository

import (
	"context"
	"fmt"
	"strings"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	Repository[models.Tag]
	// GetOrCreate returns one tag per name, creating missing ones. Names are
	// matched case-insensitively and the result follows the input order.
	GetOrCreate(ctx context.Context, names []string) ([]models.Tag, error)
	// DetachPosts removes the tag from every post carrying it.
	DetachPosts(ctx context.Context, tagID uint) error
}

type tagRepository struct {
	*Store[models.Tag]
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{Store: NewStore[models.Tag](db, "Tag", "tags", TagQuery)}
}

// Create inserts a tag directly. A tag whose name differs only in case from
// an existing one is a conflict.
func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	tag.Name = strings.TrimSpace(tag.Name)
	tag.NameKey = TagKey(tag.Name)
	if err := r.Store.Create(ctx, tag); err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewConflictError(fmt.Sprintf("Tag %q already exists", tag.Name))
		}
		return err
	}
	observability.TagsCreated.Inc()
	return nil
}

// Save keeps NameKey in step with Name.
func (r *tagRepository) Save(ctx context.Context, tag *models.Tag) error {
	tag.NameKey = TagKey(tag.Name)
	if err := r.Store.Save(ctx, tag); err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewConflictError(fmt.Sprintf("Tag %q already exists", tag.Name))
		}
		return err
	}
	return nil
}

func (r *tagRepository) GetOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	keys := make([]string, 0, len(names))
	byKey := make(map[string]string, len(names))
	for _, name := range names {
		key := TagKey(name)
		if _, dup := byKey[key]; dup || key == "" {
			continue
		}
		byKey[key] = strings.TrimSpace(name)
		keys = append(keys, key)
	}

	existing, err := r.findByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}

	var missing []models.Tag
	for _, key := range keys {
		if _, ok := existing[key]; !ok {
			missing = append(missing, models.Tag{Name: byKey[key], NameKey: key})
		}
	}

	if len(missing) > 0 {
		stop := observability.TrackQuery("upsert", "tags")
		// Keys inserted concurrently since the lookup become no-ops here and
		// are picked up by the re-read.
		result := r.Conn(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name_key"}}, DoNothing: true}).
			Create(&missing)
		stop()
		if result.Error != nil {
			return nil, fmt.Errorf("create tags: %w", result.Error)
		}
		observability.TagsCreated.Add(float64(result.RowsAffected))

		if existing, err = r.findByKeys(ctx, keys); err != nil {
			return nil, err
		}
	}

	tags := make([]models.Tag, 0, len(keys))
	for _, key := range keys {
		tag, ok := existing[key]
		if !ok {
			return nil, fmt.Errorf("tag %q missing after upsert", key)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *tagRepository) findByKeys(ctx context.Context, keys []string) (map[string]models.Tag, error) {
	defer observability.TrackQuery("select", "tags")()
	var found []models.Tag
	if err := r.Conn(ctx).Where("name_key IN ?", keys).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("lookup tags: %w", err)
	}
	out := make(map[string]models.Tag, len(found))
	for _, t := range found {
		out[t.NameKey] = t
	}
	return out, nil
}

func (r *tagRepository) DetachPosts(ctx context.Context, tagID uint) error {
	defer observability.TrackQuery("delete", "post_tags")()
	if err := r.Conn(ctx).Exec("DELETE FROM post_tags WHERE tag_id = ?", tagID).Error; err != nil {
		return fmt.Errorf("detach tag %d: %w", tagID, err)
	}
	return nil
}
