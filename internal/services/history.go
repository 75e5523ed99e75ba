package services

import (
	"fmt"
	"time"

	"github.com/sharanagouda/app-release-tracker/internal/models"
)

// Identity is the authenticated author attached to writes. The zero
// value means unauthenticated; history entries then carry no
// attribution.
type Identity struct {
	Email       string
	DisplayName string
}

// ErrIndexOutOfRange is returned when a targeted rollout update points
// at a platform or concept-release position that does not exist.
var ErrIndexOutOfRange = fmt.Errorf("platform or concept release index out of range")

// ApplyUpdate merges an incoming edit onto the stored release,
// preserving and extending rollout history. The edit form never sends
// history, so it is always restored from the stored document, never
// trusted from the client.
//
// Platforms and concept-releases are matched by array position, which
// assumes list order is stable across an edit session. A reorder that
// also changes percentages can misattribute entries; callers that know
// the exact target should use ApplyRolloutChange instead.
func ApplyUpdate(existing, incoming models.Release, who Identity, now time.Time) models.Release {
	merged := Normalize(incoming)
	base := Normalize(existing)

	for i := range merged.Platforms {
		if i >= len(base.Platforms) {
			continue
		}
		baseCRs := base.Platforms[i].ConceptReleases

		for j := range merged.Platforms[i].ConceptReleases {
			if j >= len(baseCRs) {
				// Added during this edit; history starts empty.
				continue
			}
			prev := baseCRs[j]
			cr := &merged.Platforms[i].ConceptReleases[j]

			if prev.RolloutPercentage != cr.RolloutPercentage {
				entry := models.RolloutHistoryEntry{
					Percentage:    cr.RolloutPercentage,
					Date:          now.UTC().Format(time.RFC3339),
					Notes:         fmt.Sprintf("Updated from %d%% to %d%%", prev.RolloutPercentage, cr.RolloutPercentage),
					UpdatedBy:     who.Email,
					UpdatedByName: who.DisplayName,
				}
				cr.RolloutHistory = prependHistory(entry, prev.RolloutHistory)
			} else {
				cr.RolloutHistory = prev.RolloutHistory
			}
		}
	}

	// Identity and timestamps are server-assigned on every write.
	merged.ID = base.ID
	merged.CreatedAt = base.CreatedAt
	merged.CreatedBy = base.CreatedBy
	merged.CreatedByName = base.CreatedByName
	merged.UpdatedAt = now
	merged.UpdatedBy = who.Email
	merged.UpdatedByName = who.DisplayName
	return merged
}

// ApplyCreate prepares a brand-new release for persistence: canonical
// shape, server-assigned audit fields, history as supplied (normally
// empty).
func ApplyCreate(incoming models.Release, id string, who Identity, now time.Time) models.Release {
	r := Normalize(incoming)
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	r.CreatedBy = who.Email
	r.CreatedByName = who.DisplayName
	r.UpdatedBy = who.Email
	r.UpdatedByName = who.DisplayName
	return r
}

// ApplyRolloutChange bumps one concept-release's percentage and appends
// a history entry, addressing the target by position. Notes default to
// the generated "Updated from X% to Y%" message when not supplied.
func ApplyRolloutChange(r models.Release, platformIdx, crIdx, percentage int, notes string, who Identity, now time.Time) (models.Release, error) {
	out := Normalize(r)

	if platformIdx < 0 || platformIdx >= len(out.Platforms) {
		return models.Release{}, ErrIndexOutOfRange
	}
	crs := out.Platforms[platformIdx].ConceptReleases
	if crIdx < 0 || crIdx >= len(crs) {
		return models.Release{}, ErrIndexOutOfRange
	}

	cr := &out.Platforms[platformIdx].ConceptReleases[crIdx]
	if notes == "" {
		notes = fmt.Sprintf("Updated from %d%% to %d%%", cr.RolloutPercentage, percentage)
	}
	entry := models.RolloutHistoryEntry{
		Percentage:    percentage,
		Date:          now.UTC().Format(time.RFC3339),
		Notes:         notes,
		UpdatedBy:     who.Email,
		UpdatedByName: who.DisplayName,
	}
	cr.RolloutHistory = prependHistory(entry, cr.RolloutHistory)
	cr.RolloutPercentage = percentage

	out.UpdatedAt = now
	out.UpdatedBy = who.Email
	out.UpdatedByName = who.DisplayName
	return out, nil
}

// prependHistory builds [entry, existing...] without touching the
// existing slice's backing array.
func prependHistory(entry models.RolloutHistoryEntry, existing []models.RolloutHistoryEntry) []models.RolloutHistoryEntry {
	out := make([]models.RolloutHistoryEntry, 0, len(existing)+1)
	out = append(out, entry)
	out = append(out, existing...)
	return out
}
