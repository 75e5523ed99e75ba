package services

import (
	"gorm.io/datatypes"

	"github.com/sharanagouda/app-release-tracker/internal/models"
)

// Normalize returns the release in the canonical nested shape. It is
// pure and idempotent; malformed input degrades to sane defaults
// instead of erroring so a single bad document never breaks a listing.
//
// All defaulting lives here. Consumers never re-derive defaults at
// their own read sites.
func Normalize(r models.Release) models.Release {
	platforms := make([]models.PlatformRelease, len(r.Platforms))
	for i, p := range r.Platforms {
		platforms[i] = normalizePlatform(p)
	}
	r.Platforms = datatypes.NewJSONSlice(platforms)

	// Prefer environment over the deprecated concept grouping. The
	// concept field is left in place for old readers.
	if r.Environment == "" {
		r.Environment = r.Concept
	}
	if r.Changes == nil {
		r.Changes = []string{}
	}
	return r
}

// NormalizeAll normalizes a whole collection, preserving order.
func NormalizeAll(releases []models.Release) []models.Release {
	out := make([]models.Release, len(releases))
	for i, r := range releases {
		out[i] = Normalize(r)
	}
	return out
}

// ConceptReleasesOf returns the platform's builds in canonical form,
// lifting the legacy single-build shape on the fly when needed.
func ConceptReleasesOf(p models.PlatformRelease) []models.ConceptRelease {
	if len(p.ConceptReleases) > 0 {
		return p.ConceptReleases
	}
	return []models.ConceptRelease{liftLegacy(p)}
}

func normalizePlatform(p models.PlatformRelease) models.PlatformRelease {
	out := models.PlatformRelease{Platform: p.Platform}

	if len(p.ConceptReleases) > 0 {
		out.ConceptReleases = make([]models.ConceptRelease, len(p.ConceptReleases))
		for i, cr := range p.ConceptReleases {
			if cr.Concepts == nil {
				cr.Concepts = []string{models.AllConcepts}
			}
			if cr.Status == "" {
				cr.Status = models.StatusNotStarted
			}
			if cr.RolloutHistory == nil {
				cr.RolloutHistory = []models.RolloutHistoryEntry{}
			}
			out.ConceptReleases[i] = cr
		}
		return out
	}

	out.ConceptReleases = []models.ConceptRelease{liftLegacy(p)}
	return out
}

// liftLegacy synthesizes a single ConceptRelease from the flat fields a
// pre-migration platform carried directly.
func liftLegacy(p models.PlatformRelease) models.ConceptRelease {
	cr := models.ConceptRelease{
		ID:             string(p.Platform) + "-legacy",
		Concepts:       p.Concepts,
		Version:        p.Version,
		BuildID:        p.BuildID,
		Status:         p.Status,
		Notes:          p.Notes,
		BuildLink:      p.BuildLink,
		RolloutHistory: p.RolloutHistory,
	}
	if cr.Concepts == nil {
		cr.Concepts = []string{models.AllConcepts}
	}
	if p.RolloutPercentage != nil {
		cr.RolloutPercentage = *p.RolloutPercentage
	}
	if cr.Status == "" {
		cr.Status = models.StatusNotStarted
	}
	if cr.RolloutHistory == nil {
		cr.RolloutHistory = []models.RolloutHistoryEntry{}
	}
	return cr
}
