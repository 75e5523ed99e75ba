package store

import (
	"context"
	"sort"
	"sync"

	"github.com/sharanagouda/app-release-tracker/internal/models"
)

// MemoryStore is an in-memory ReleaseStore used in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	releases map[string]models.Release
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{releases: make(map[string]models.Release)}
}

func (s *MemoryStore) GetAll(_ context.Context) ([]models.Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Release, 0, len(s.releases))
	for _, r := range s.releases {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetOne(_ context.Context, id string) (models.Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.releases[id]
	if !ok {
		return models.Release{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Put(_ context.Context, release models.Release) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releases[release.ID] = release
	return release.ID, nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.releases[id]; !ok {
		return ErrNotFound
	}
	delete(s.releases, id)
	return nil
}

func (s *MemoryStore) ReplaceAll(_ context.Context, releases []models.Release) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releases = make(map[string]models.Release, len(releases))
	for _, r := range releases {
		s.releases[r.ID] = r
	}
	return nil
}
