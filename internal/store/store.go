package store

import (
	"context"
	"errors"

	"github.com/sharanagouda/app-release-tracker/internal/models"
)

// ErrNotFound is returned when a release id is absent from the store.
var ErrNotFound = errors.New("release not found")

// ReleaseStore is the persistence boundary for release documents. The
// release is the unit of replacement: Put overwrites the whole
// document, there is no partial update or optimistic concurrency.
type ReleaseStore interface {
	// GetAll returns every release, newest first by createdAt.
	GetAll(ctx context.Context) ([]models.Release, error)
	// GetOne returns the release with the given id or ErrNotFound.
	GetOne(ctx context.Context, id string) (models.Release, error)
	// Put creates the release when its id is absent and replaces it
	// when present. Returns the stored id.
	Put(ctx context.Context, release models.Release) (string, error)
	// Remove deletes the release permanently. ErrNotFound when absent.
	Remove(ctx context.Context, id string) error
	// ReplaceAll swaps the entire collection, used by JSON import.
	ReplaceAll(ctx context.Context, releases []models.Release) error
}
