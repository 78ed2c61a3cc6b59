package repository

import (
	"context"
	"errors"
	"fmt"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	// GetOrCreateForUser returns the user's profile, creating an empty one on
	// first access.
	GetOrCreateForUser(ctx context.Context, userID uint) (*models.Profile, error)
	Save(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) find(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := database.Conn(ctx, r.db).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetOrCreateForUser(ctx context.Context, userID uint) (*models.Profile, error) {
	defer observability.TrackQuery("get", "profiles")()

	profile, err := r.find(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get profile of user %d: %w", userID, err)
	}

	created := &models.Profile{UserID: userID}
	err = database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(created).Error
	if err != nil {
		return nil, fmt.Errorf("create profile of user %d: %w", userID, err)
	}

	// Re-read: a concurrent request may have created the row first.
	profile, err = r.find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile of user %d: %w", userID, err)
	}
	return profile, nil
}

func (r *profileRepository) Save(ctx context.Context, profile *models.Profile) error {
	defer observability.TrackQuery("update", "profiles")()
	if err := database.Conn(ctx, r.db).Save(profile).Error; err != nil {
		return fmt.Errorf("update profile %d: %w", profile.ID, err)
	}
	return nil
}
