package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/app-functions/internal/lib/job"
	"github.com/deppfellow/app-functions/internal/model"
	"github.com/deppfellow/app-functions/internal/repository"
	"github.com/rs/zerolog"
)

// ErrMissingUID rejects account events without an identity-provider id.
var ErrMissingUID = errors.New("account event has no uid")

// SyncResult tells which branch of the upsert ran.
type SyncResult int

const (
	// SyncFailed: a lookup or write returned an error.
	SyncFailed SyncResult = iota
	// SyncExisting: a profile with the uid already existed; nothing was written.
	SyncExisting
	// SyncLinked: a profile with the email existed; only its uid was set.
	SyncLinked
	// SyncCreated: a new profile keyed by uid was inserted.
	SyncCreated
)

func (r SyncResult) String() string {
	switch r {
	case SyncExisting:
		return "existing"
	case SyncLinked:
		return "linked"
	case SyncCreated:
		return "created"
	default:
		return "failed"
	}
}

// AccountSyncService mirrors new identity-provider accounts into profiles.
type AccountSyncService struct {
	profiles repository.ProfileRepository
	enqueuer job.Enqueuer
	logger   *zerolog.Logger
}

// NewAccountSyncService creates the service. A nil enqueuer disables the
// welcome email.
func NewAccountSyncService(profiles repository.ProfileRepository, enqueuer job.Enqueuer, logger *zerolog.Logger) *AccountSyncService {
	return &AccountSyncService{profiles: profiles, enqueuer: enqueuer, logger: logger}
}

// Sync matches the account by uid, then by email, and inserts a profile
// only when neither matches. There is no transaction around the lookups;
// the stores reject a second profile with the same email instead.
func (s *AccountSyncService) Sync(ctx context.Context, evt model.AccountCreatedEvent) (SyncResult, error) {
	if evt.UID == "" {
		return SyncFailed, ErrMissingUID
	}

	log := loggerFrom(ctx, s.logger).With().
		Str("uid", evt.UID).
		Str("email", evt.Email).
		Logger()

	existing, err := s.profiles.FindByUID(ctx, evt.UID)
	switch {
	case err == nil:
		log.Info().Str("key", existing.Key).Msg("profile already exists")
		return SyncExisting, nil
	case !errors.Is(err, repository.ErrProfileNotFound):
		log.Error().Err(err).Msg("lookup by uid failed")
		return SyncFailed, fmt.Errorf("lookup by uid: %w", err)
	}

	if evt.Email != "" {
		byEmail, err := s.profiles.FindByEmail(ctx, evt.Email)
		switch {
		case err == nil:
			if err := s.profiles.SetUID(ctx, byEmail.Key, evt.UID); err != nil {
				log.Error().Err(err).Str("key", byEmail.Key).Msg("failed to link profile")
				return SyncFailed, fmt.Errorf("link profile %s: %w", byEmail.Key, err)
			}
			log.Info().Str("key", byEmail.Key).Msg("linked existing profile to account")
			return SyncLinked, nil
		case !errors.Is(err, repository.ErrProfileNotFound):
			log.Error().Err(err).Msg("lookup by email failed")
			return SyncFailed, fmt.Errorf("lookup by email: %w", err)
		}
	}

	profile := evt.Profile()
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicateProfile) {
			log.Warn().Err(err).Msg("profile created concurrently, insert skipped")
		} else {
			log.Error().Err(err).Msg("failed to create profile")
		}
		return SyncFailed, fmt.Errorf("create profile: %w", err)
	}

	log.Info().Msg("created profile")
	s.enqueueWelcome(ctx, &log, profile)

	return SyncCreated, nil
}

func (s *AccountSyncService) enqueueWelcome(ctx context.Context, log *zerolog.Logger, p model.UserProfile) {
	if s.enqueuer == nil || p.Email == "" {
		return
	}

	task, err := job.NewWelcomeEmailTask(p.Email, p.Name)
	if err != nil {
		log.Error().Err(err).Msg("failed to build welcome email task")
		return
	}

	if _, err := s.enqueuer.EnqueueContext(ctx, task); err != nil {
		log.Error().Err(err).Msg("failed to enqueue welcome email")
		return
	}
	log.Debug().Msg("welcome email enqueued")
}
