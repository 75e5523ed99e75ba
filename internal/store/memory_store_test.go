package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sharanagouda/app-release-tracker/internal/models"
)

func TestMemoryStore_CRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetOne(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	release := models.Release{ID: "r1", ReleaseName: "App Release 5.20.0", CreatedAt: time.Now()}
	id, err := s.Put(ctx, release)
	assert.NoError(t, err)
	assert.Equal(t, "r1", id)

	got, err := s.GetOne(ctx, "r1")
	assert.NoError(t, err)
	assert.Equal(t, "App Release 5.20.0", got.ReleaseName)

	// Put with an existing id replaces
	release.ReleaseName = "App Release 5.20.1"
	_, err = s.Put(ctx, release)
	assert.NoError(t, err)
	got, _ = s.GetOne(ctx, "r1")
	assert.Equal(t, "App Release 5.20.1", got.ReleaseName)

	assert.NoError(t, s.Remove(ctx, "r1"))
	assert.ErrorIs(t, s.Remove(ctx, "r1"), ErrNotFound)
}

func TestMemoryStore_GetAllNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		_, err := s.Put(ctx, models.Release{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		assert.NoError(t, err)
	}

	all, err := s.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "old", all[2].ID)
}

func TestMemoryStore_ReplaceAll(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Put(ctx, models.Release{ID: "stale"})
	assert.NoError(t, err)

	err = s.ReplaceAll(ctx, []models.Release{{ID: "a"}, {ID: "b"}})
	assert.NoError(t, err)

	all, err := s.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.GetOne(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
}
