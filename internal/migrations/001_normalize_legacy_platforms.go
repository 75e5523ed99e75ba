package migrations

import (
	"gorm.io/gorm"

	"github.com/sharanagouda/app-release-tracker/internal/models"
	"github.com/sharanagouda/app-release-tracker/internal/services"
)

// Migration001NormalizeLegacyPlatforms rewrites stored releases whose
// platforms still carry the flat single-build shape into the canonical
// conceptReleases form, so the read path stops paying for the lift on
// every request. Runs once; Normalize is idempotent so re-running over
// canonical rows is harmless.
func Migration001NormalizeLegacyPlatforms() Migration {
	return Migration{
		ID:   "001_normalize_legacy_platforms",
		Name: "Lift legacy single-build platforms into concept releases",
		Up: func(db *gorm.DB) error {
			var releases []models.Release
			if err := db.Find(&releases).Error; err != nil {
				return err
			}
			for _, r := range releases {
				normalized := services.Normalize(r)
				if err := db.Save(&normalized).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Down: func(db *gorm.DB) error {
			// The legacy shape is not reconstructable once lifted.
			return nil
		},
	}
}
