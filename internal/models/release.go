package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Platform string

const (
	PlatformIOS        Platform = "iOS"
	PlatformAndroidGMS Platform = "Android GMS"
	PlatformAndroidHMS Platform = "Android HMS"
)

// Platforms lists every supported target runtime.
var Platforms = []Platform{PlatformIOS, PlatformAndroidGMS, PlatformAndroidHMS}

// ReleaseStatus is stored as free text; these are the values the
// dashboard writes. Unknown values are passed through untouched.
type ReleaseStatus string

const (
	StatusNotStarted ReleaseStatus = "Not Started"
	StatusInProgress ReleaseStatus = "In Progress"
	StatusComplete   ReleaseStatus = "Complete"
	StatusPaused     ReleaseStatus = "Paused"
	StatusOnHold     ReleaseStatus = "On Hold"
)

// AllConcepts is the sentinel concept tag meaning a build targets every
// brand concept.
const AllConcepts = "All Concepts"

// RolloutHistoryEntry records one rollout percentage change. Entries are
// append-only and ordered newest-first; nothing mutates or prunes them.
type RolloutHistoryEntry struct {
	Percentage    int    `json:"percentage"`
	Date          string `json:"date"`
	Notes         string `json:"notes,omitempty"`
	UpdatedBy     string `json:"updatedBy,omitempty"`
	UpdatedByName string `json:"updatedByName,omitempty"`
}

// ConceptRelease is one concrete build (version + build id + rollout
// state) targeting a subset of concepts on one platform.
type ConceptRelease struct {
	ID                string                `json:"id"`
	Concepts          []string              `json:"concepts"`
	Version           string                `json:"version"`
	BuildID           string                `json:"buildId"`
	RolloutPercentage int                   `json:"rolloutPercentage"`
	Status            ReleaseStatus         `json:"status"`
	Notes             string                `json:"notes,omitempty"`
	BuildLink         string                `json:"buildLink,omitempty"`
	RolloutHistory    []RolloutHistoryEntry `json:"rolloutHistory"`
}

// PlatformRelease groups the builds shipped to one platform. Canonical
// documents carry conceptReleases; documents written before the
// multi-build model carry a single build's fields directly on the
// platform. services.Normalize lifts the old shape at every read
// boundary, so everything past that only sees conceptReleases.
type PlatformRelease struct {
	Platform        Platform         `json:"platform"`
	ConceptReleases []ConceptRelease `json:"conceptReleases"`

	// Legacy single-build fields, only present on old documents.
	Version           string                `json:"version,omitempty"`
	BuildID           string                `json:"buildId,omitempty"`
	RolloutPercentage *int                  `json:"rolloutPercentage,omitempty"`
	Status            ReleaseStatus         `json:"status,omitempty"`
	Concepts          []string              `json:"concepts,omitempty"`
	Notes             string                `json:"notes,omitempty"`
	BuildLink         string                `json:"buildLink,omitempty"`
	RolloutHistory    []RolloutHistoryEntry `json:"rolloutHistory,omitempty"`
}

// Release is one tracked deployment event spanning one or more
// platforms. The nested platform tree is stored as a single JSONB
// document; the release itself is the unit of replacement on update.
type Release struct {
	ID          string                               `gorm:"primaryKey;type:text" json:"id"`
	ReleaseDate string                               `gorm:"index" json:"releaseDate"`
	ReleaseName string                               `json:"releaseName"`
	Environment string                               `gorm:"index" json:"environment"`
	Platforms   datatypes.JSONSlice[PlatformRelease] `gorm:"type:jsonb" json:"platforms"`
	Changes     pq.StringArray                       `gorm:"type:text[]" json:"changes"`
	Notes       string                               `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"column:createdAt;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`

	// Server-assigned audit identity, never trusted from the client.
	CreatedBy     string `gorm:"column:createdBy" json:"createdBy,omitempty"`
	CreatedByName string `gorm:"column:createdByName" json:"createdByName,omitempty"`
	UpdatedBy     string `gorm:"column:updatedBy" json:"updatedBy,omitempty"`
	UpdatedByName string `gorm:"column:updatedByName" json:"updatedByName,omitempty"`

	// Deprecated grouping field kept so old exports still read back.
	// Canonical writers use Environment.
	Concept string `json:"concept,omitempty"`
}
