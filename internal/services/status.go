package services

import "github.com/sharanagouda/app-release-tracker/internal/models"

// OverallStatus reduces every concept-release across every platform of
// the release into one status by unanimous vote:
//
//   - no concept-releases at all        -> Not Started
//   - every one Complete                -> Complete
//   - every one Paused (or On Hold)     -> Paused
//   - anything else                     -> In Progress
//
// Deliberately conservative: any disagreement means something still
// needs attention.
func OverallStatus(r models.Release) models.ReleaseStatus {
	hasAny := false
	allComplete := true
	allPaused := true

	for _, p := range r.Platforms {
		for _, cr := range ConceptReleasesOf(p) {
			hasAny = true
			if cr.Status != models.StatusComplete {
				allComplete = false
			}
			if cr.Status != models.StatusPaused && cr.Status != models.StatusOnHold {
				allPaused = false
			}
		}
	}

	switch {
	case !hasAny:
		return models.StatusNotStarted
	case allComplete:
		return models.StatusComplete
	case allPaused:
		return models.StatusPaused
	default:
		return models.StatusInProgress
	}
}

// ReleaseStats are the dashboard headline numbers.
type ReleaseStats struct {
	TotalReleases     int `json:"totalReleases"`
	ActiveReleases    int `json:"activeReleases"`
	CompletedReleases int `json:"completedReleases"`
	PausedReleases    int `json:"pausedReleases"`
}

// ComputeStats counts concept-release statuses across the collection.
func ComputeStats(releases []models.Release) ReleaseStats {
	stats := ReleaseStats{TotalReleases: len(releases)}
	for _, r := range releases {
		for _, p := range r.Platforms {
			for _, cr := range ConceptReleasesOf(p) {
				switch cr.Status {
				case models.StatusInProgress:
					stats.ActiveReleases++
				case models.StatusComplete:
					stats.CompletedReleases++
				case models.StatusPaused, models.StatusOnHold:
					stats.PausedReleases++
				}
			}
		}
	}
	return stats
}
