package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/deppfellow/app-functions/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func name(s string) *string { return &s }

func TestMemoryProfileRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepository(model.UserProfile{Key: "admin-1", Email: "a@b.c", Role: 2})

	_, err := repo.FindByUID(ctx, "")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	p, err := repo.FindByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", p.Key)

	_, err = repo.FindByEmail(ctx, "")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	require.NoError(t, repo.SetUID(ctx, "admin-1", "u1"))
	p, err = repo.FindByUID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", p.Key)
	assert.Equal(t, 2, p.Role)
}

func TestMemoryProfileRepository_CreateRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepository()

	require.NoError(t, repo.Create(ctx, model.UserProfile{Key: "u1", UID: "u1", Email: "a@b.c"}))
	assert.ErrorIs(t, repo.Create(ctx, model.UserProfile{Key: "u1", UID: "u1"}), ErrDuplicateProfile)
	assert.ErrorIs(t, repo.Create(ctx, model.UserProfile{Key: "u2", UID: "u2", Email: "a@b.c"}), ErrDuplicateProfile)

	require.NoError(t, repo.Create(ctx, model.UserProfile{Key: "u3", UID: "u3"}))
	require.NoError(t, repo.Create(ctx, model.UserProfile{Key: "u4", UID: "u4"}))
	assert.Equal(t, 3, repo.Len())
}

func TestMemoryProfileRepository_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepository()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			_ = repo.Create(ctx, model.UserProfile{Key: key, UID: key, Email: "same@b.c"})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, repo.Len())
}

func TestMemoryProfileRepository_UpdateFields(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepository(model.UserProfile{Key: "k", UID: "u", Name: "Old", Image: "old.png", Role: 1})

	require.NoError(t, repo.UpdateFields(ctx, "k", model.ProfileUpdate{Name: name("New")}))
	p, _ := repo.Get("k")
	assert.Equal(t, "New", p.Name)
	assert.Equal(t, "old.png", p.Image)

	assert.ErrorIs(t, repo.UpdateFields(ctx, "missing", model.ProfileUpdate{Name: name("x")}), ErrProfileNotFound)
	assert.ErrorIs(t, repo.SetUID(ctx, "missing", "x"), ErrProfileNotFound)
	assert.Equal(t, 1, repo.Writes())
}

func TestMemoryProfileRepository_SetUIDRejectsTakenUID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepository(
		model.UserProfile{Key: "u1", UID: "u1", Email: "a@b.c", Role: 1},
		model.UserProfile{Key: "admin-1", Email: "admin@b.c", Role: 2},
	)

	assert.ErrorIs(t, repo.SetUID(ctx, "admin-1", "u1"), ErrDuplicateProfile)
	assert.Equal(t, 0, repo.Writes())

	p, _ := repo.Get("admin-1")
	assert.Empty(t, p.UID)

	// Re-setting a profile's own uid is not a collision.
	require.NoError(t, repo.SetUID(ctx, "u1", "u1"))
	assert.ErrorIs(t, repo.SetUID(ctx, "missing", "u9"), ErrProfileNotFound)
}
