package repository

import (
	"context"
	"sync"

	"github.com/deppfellow/app-functions/internal/model"
)

// MemoryProfileRepository keeps profiles in a map. Used by the memory
// storage driver and by tests.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]model.UserProfile
	writes   int
}

func NewMemoryProfileRepository(seed ...model.UserProfile) *MemoryProfileRepository {
	r := &MemoryProfileRepository{profiles: make(map[string]model.UserProfile)}
	for _, p := range seed {
		r.profiles[p.Key] = p
	}
	return r
}

func (r *MemoryProfileRepository) FindByUID(_ context.Context, uid string) (model.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if uid == "" {
		return model.UserProfile{}, ErrProfileNotFound
	}
	for _, p := range r.profiles {
		if p.UID == uid {
			return p, nil
		}
	}
	return model.UserProfile{}, ErrProfileNotFound
}

func (r *MemoryProfileRepository) FindByEmail(_ context.Context, email string) (model.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if email == "" {
		return model.UserProfile{}, ErrProfileNotFound
	}
	for _, p := range r.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return model.UserProfile{}, ErrProfileNotFound
}

func (r *MemoryProfileRepository) Create(_ context.Context, profile model.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[profile.Key]; ok {
		return ErrDuplicateProfile
	}
	for _, p := range r.profiles {
		if (profile.Email != "" && p.Email == profile.Email) || (profile.UID != "" && p.UID == profile.UID) {
			return ErrDuplicateProfile
		}
	}

	r.profiles[profile.Key] = profile
	r.writes++
	return nil
}

func (r *MemoryProfileRepository) SetUID(_ context.Context, key, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[key]
	if !ok {
		return ErrProfileNotFound
	}
	for k, other := range r.profiles {
		if k != key && uid != "" && other.UID == uid {
			return ErrDuplicateProfile
		}
	}
	p.UID = uid
	r.profiles[key] = p
	r.writes++
	return nil
}

func (r *MemoryProfileRepository) UpdateFields(_ context.Context, key string, update model.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[key]
	if !ok {
		return ErrProfileNotFound
	}
	r.profiles[key] = update.Apply(p)
	r.writes++
	return nil
}

// Get returns the profile stored under key.
func (r *MemoryProfileRepository) Get(key string) (model.UserProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[key]
	return p, ok
}

// Len returns the number of stored profiles.
func (r *MemoryProfileRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// Writes returns the number of successful mutations.
func (r *MemoryProfileRepository) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}
