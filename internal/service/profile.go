package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/app-functions/internal/errs"
	"github.com/deppfellow/app-functions/internal/model"
	"github.com/deppfellow/app-functions/internal/repository"
	"github.com/rs/zerolog"
)

// ProfileService reads and updates the caller's own profile.
type ProfileService struct {
	profiles repository.ProfileRepository
	logger   *zerolog.Logger
}

func NewProfileService(profiles repository.ProfileRepository, logger *zerolog.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, logger: logger}
}

// Get returns the stored profile, or a synthesized default built from the
// claims when none exists. The default is not persisted.
func (s *ProfileService) Get(ctx context.Context, claims model.Claims) (model.UserProfile, error) {
	profile, err := s.profiles.FindByUID(ctx, claims.UID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		loggerFrom(ctx, s.logger).Debug().Msg("no stored profile, returning default")
		return model.DefaultProfile(claims), nil
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// Update applies the non-nil fields of update to the caller's profile and
// returns the merged result. A missing profile is a 404; nothing is created.
func (s *ProfileService) Update(ctx context.Context, claims model.Claims, update model.ProfileUpdate) (model.UserProfile, error) {
	profile, err := s.profiles.FindByUID(ctx, claims.UID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return model.UserProfile{}, errs.NewNotFoundError("Not found", false, nil)
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}

	if update.IsEmpty() {
		return profile, nil
	}

	if err := s.profiles.UpdateFields(ctx, profile.Key, update); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return model.UserProfile{}, errs.NewNotFoundError("Not found", false, nil)
		}
		return model.UserProfile{}, fmt.Errorf("update profile: %w", err)
	}

	loggerFrom(ctx, s.logger).Info().
		Str("key", profile.Key).
		Bool("name", update.Name != nil).
		Bool("image", update.Image != nil).
		Msg("profile updated")

	return update.Apply(profile), nil
}
