// Package repository handles all interactions with the profile store.
//
// Each backend (MongoDB, PostgreSQL, in-memory) implements
// ProfileRepository so the service layer never sees driver types.
package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/app-functions/internal/model"
)

var (
	// ErrProfileNotFound is returned when no profile matches a lookup or update.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrDuplicateProfile is returned when an insert collides with an existing
	// profile on key, uid or email.
	ErrDuplicateProfile = errors.New("profile already exists")
)

// ProfileRepository is the storage contract for user profiles.
//
// Lookups return ErrProfileNotFound on a miss. Writes never touch the key,
// and no method deletes.
type ProfileRepository interface {
	FindByUID(ctx context.Context, uid string) (model.UserProfile, error)
	FindByEmail(ctx context.Context, email string) (model.UserProfile, error)
	Create(ctx context.Context, profile model.UserProfile) error
	SetUID(ctx context.Context, key, uid string) error
	UpdateFields(ctx context.Context, key string, update model.ProfileUpdate) error
}
