package service

import (
	"context"
	"strings"

	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/policy"
	"folio/internal/repository"
)

type UpdateProfileInput struct {
	Bio    *string `json:"bio"`
	Avatar *string `json:"avatar"`
}

// ProfileService serves the caller's own profile, created empty on first use.
type ProfileService struct {
	profiles repository.ProfileRepository
	tx       Transactor
	valid    Validator
}

func NewProfileService(profiles repository.ProfileRepository, tx Transactor, valid Validator) *ProfileService {
	return &ProfileService{profiles: profiles, tx: tx, valid: valid}
}

func (s *ProfileService) load(ctx context.Context, actor models.Actor, action policy.Action) (*models.Profile, error) {
	if err := policy.Check(actor, action, models.KindProfile, nil); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetOrCreateForUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, action, models.KindProfile, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) GetMyProfile(ctx context.Context, actor models.Actor) (*models.Profile, error) {
	return s.load(ctx, actor, policy.Read)
}

func (s *ProfileService) UpdateMyProfile(ctx context.Context, actor models.Actor, in UpdateProfileInput) (*models.Profile, error) {
	var profile *models.Profile
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if profile, err = s.load(ctx, actor, policy.Update); err != nil {
			return err
		}
		if in.Bio != nil {
			profile.Bio = *in.Bio
		}
		if in.Avatar != nil {
			profile.Avatar = strings.TrimSpace(*in.Avatar)
		}
		if err := s.valid.Validate(profile); err != nil {
			return err
		}
		return s.profiles.Save(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "profile updated", "id", profile.ID, "actor_id", actor.UserID)
	return profile, nil
}
