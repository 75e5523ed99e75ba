package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/sharanagouda/app-release-tracker/internal/database"
	"github.com/sharanagouda/app-release-tracker/internal/models"
	"github.com/sharanagouda/app-release-tracker/internal/services"
	"github.com/sharanagouda/app-release-tracker/internal/store"
	apperrors "github.com/sharanagouda/app-release-tracker/pkg/errors"
	"github.com/sharanagouda/app-release-tracker/pkg/logger"
	"github.com/sharanagouda/app-release-tracker/pkg/utils"
)

// Store is the release persistence backend, wired in main (gorm) and in
// tests (in-memory).
var Store store.ReleaseStore

const statsCacheKey = "stats:releases"

// -- Inputs --

type ReleaseInput struct {
	ReleaseDate string                   `json:"releaseDate" binding:"required"`
	ReleaseName string                   `json:"releaseName" binding:"required"`
	Environment string                   `json:"environment" binding:"required"`
	Platforms   []models.PlatformRelease `json:"platforms"`
	Changes     []string                 `json:"changes"`
	Notes       string                   `json:"notes"`
}

type RolloutUpdateInput struct {
	PlatformIndex       *int   `json:"platformIndex" binding:"required"`
	ConceptReleaseIndex *int   `json:"conceptReleaseIndex" binding:"required"`
	Percentage          *int   `json:"percentage" binding:"required,min=0,max=100"`
	Notes               string `json:"notes"`
}

func (in *ReleaseInput) toModel() models.Release {
	return models.Release{
		ReleaseDate: in.ReleaseDate,
		ReleaseName: in.ReleaseName,
		Environment: in.Environment,
		Platforms:   datatypes.NewJSONSlice(in.Platforms),
		Changes:     in.Changes,
		Notes:       in.Notes,
	}
}

// currentIdentity reads the authenticated caller set by the auth
// middleware. Anonymous callers get a zero identity; nothing here
// enforces authorization, the route table does.
func currentIdentity(c *gin.Context) services.Identity {
	email := c.GetString("userEmail")
	if email == "" {
		return services.Identity{}
	}
	name := c.GetString("userName")
	if name == "" {
		name = utils.DisplayNameFromEmail(email)
	}
	return services.Identity{Email: email, DisplayName: name}
}

func filtersFromQuery(c *gin.Context) services.FilterOptions {
	return services.FilterOptions{
		Status:      c.Query("status"),
		Environment: c.Query("environment"),
		Platform:    c.Query("platform"),
		Concept:     c.Query("concept"),
		Search:      c.Query("search"),
		From:        c.Query("from"),
		To:          c.Query("to"),
		OrderBy:     c.Query("orderBy"),
	}
}

// storeError maps persistence failures onto the API error vocabulary.
func storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		abortWithError(c, apperrors.NotFound("Release not found"))
		return
	}
	abortWithError(c, apperrors.Internal("Database error"))
}

// -- Handlers --

// ListReleases handles GET /releases with the dashboard filters.
func ListReleases(c *gin.Context) {
	releases, err := Store.GetAll(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch releases")
		abortWithError(c, apperrors.Internal("Failed to fetch releases"))
		return
	}

	releases = services.NormalizeAll(releases)
	releases = services.FilterReleases(releases, filtersFromQuery(c))

	c.JSON(http.StatusOK, gin.H{"releases": releases})
}

// GetRelease handles GET /releases/:id.
func GetRelease(c *gin.Context) {
	release, err := Store.GetOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}

	release = services.Normalize(release)
	c.JSON(http.StatusOK, gin.H{
		"release":       release,
		"overallStatus": services.OverallStatus(release),
	})
}

// CreateRelease handles POST /releases.
func CreateRelease(c *gin.Context) {
	var input ReleaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, apperrors.BadRequest(err.Error()))
		return
	}

	release := services.ApplyCreate(input.toModel(), utils.GenerateID(), currentIdentity(c), time.Now())

	if _, err := Store.Put(c.Request.Context(), release); err != nil {
		logger.Error().Err(err).Msg("Failed to create release")
		abortWithError(c, apperrors.Internal("Failed to create release"))
		return
	}

	invalidateStatsCache()
	logger.Info().Str("release_id", release.ID).Str("name", release.ReleaseName).Msg("Release created")
	c.JSON(http.StatusCreated, gin.H{"release": release})
}

// UpdateRelease handles PUT /releases/:id. The stored document is the
// history source of truth; a missing id is an error, never an implicit
// create.
func UpdateRelease(c *gin.Context) {
	id := c.Param("id")

	var input ReleaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, apperrors.BadRequest(err.Error()))
		return
	}

	existing, err := Store.GetOne(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}

	merged := services.ApplyUpdate(existing, input.toModel(), currentIdentity(c), time.Now())

	if _, err := Store.Put(c.Request.Context(), merged); err != nil {
		logger.Error().Err(err).Str("release_id", id).Msg("Failed to update release")
		abortWithError(c, apperrors.Internal("Failed to update release"))
		return
	}

	invalidateStatsCache()
	c.JSON(http.StatusOK, gin.H{"release": merged})
}

// UpdateRolloutPercentage handles PATCH /releases/:id/rollout, a
// targeted percentage bump on one concept-release.
func UpdateRolloutPercentage(c *gin.Context) {
	id := c.Param("id")

	var input RolloutUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, apperrors.BadRequest(err.Error()))
		return
	}

	existing, err := Store.GetOne(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}

	updated, err := services.ApplyRolloutChange(
		existing,
		*input.PlatformIndex,
		*input.ConceptReleaseIndex,
		*input.Percentage,
		input.Notes,
		currentIdentity(c),
		time.Now(),
	)
	if err != nil {
		abortWithError(c, apperrors.BadRequest(err.Error()))
		return
	}

	if _, err := Store.Put(c.Request.Context(), updated); err != nil {
		logger.Error().Err(err).Str("release_id", id).Msg("Failed to update rollout")
		abortWithError(c, apperrors.Internal("Failed to update rollout"))
		return
	}

	invalidateStatsCache()
	c.JSON(http.StatusOK, gin.H{"release": updated})
}

// DeleteRelease handles DELETE /releases/:id. Hard delete, no
// soft-delete or undo.
func DeleteRelease(c *gin.Context) {
	id := c.Param("id")

	if err := Store.Remove(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abortWithError(c, apperrors.NotFound("Release not found"))
		} else {
			logger.Error().Err(err).Str("release_id", id).Msg("Failed to delete release")
			abortWithError(c, apperrors.Internal("Failed to delete release"))
		}
		return
	}

	invalidateStatsCache()
	logger.Info().Str("release_id", id).Msg("Release deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Release deleted"})
}

// GetReleaseStats handles GET /releases/stats, cached for a short
// window since the dashboard polls it.
func GetReleaseStats(c *gin.Context) {
	var stats services.ReleaseStats
	if err := database.CacheGet(statsCacheKey, &stats); err == nil {
		c.JSON(http.StatusOK, gin.H{"stats": stats})
		return
	}

	releases, err := Store.GetAll(c.Request.Context())
	if err != nil {
		abortWithError(c, apperrors.Internal("Failed to fetch releases"))
		return
	}

	stats = services.ComputeStats(services.NormalizeAll(releases))
	if err := database.CacheSet(statsCacheKey, stats, 5*time.Minute); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache release stats")
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ExportReleasesCSV handles GET /releases/export/csv, honoring the same
// filters as the list endpoint.
func ExportReleasesCSV(c *gin.Context) {
	releases, err := Store.GetAll(c.Request.Context())
	if err != nil {
		abortWithError(c, apperrors.Internal("Failed to fetch releases"))
		return
	}

	releases = services.FilterReleases(services.NormalizeAll(releases), filtersFromQuery(c))

	var buf bytes.Buffer
	if err := services.WriteCSV(&buf, releases); err != nil {
		logger.Error().Err(err).Msg("CSV export failed")
		abortWithError(c, apperrors.Internal("Failed to export releases"))
		return
	}

	filename := fmt.Sprintf("releases_export_%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportReleasesJSON handles GET /releases/export/json. The output must
// round-trip: re-importing it yields the same collection.
func ExportReleasesJSON(c *gin.Context) {
	releases, err := Store.GetAll(c.Request.Context())
	if err != nil {
		abortWithError(c, apperrors.Internal("Failed to fetch releases"))
		return
	}

	releases = services.FilterReleases(services.NormalizeAll(releases), filtersFromQuery(c))

	payload, err := json.MarshalIndent(releases, "", "  ")
	if err != nil {
		abortWithError(c, apperrors.Internal("Failed to export releases"))
		return
	}

	filename := fmt.Sprintf("releases_export_%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// ImportReleases handles POST /releases/import: replaces the stored
// collection with the posted JSON array.
func ImportReleases(c *gin.Context) {
	var incoming []models.Release
	if err := c.ShouldBindJSON(&incoming); err != nil {
		abortWithError(c, apperrors.BadRequest("Invalid JSON: expected an array of releases"))
		return
	}

	releases := make([]models.Release, len(incoming))
	for i, r := range incoming {
		r = services.Normalize(r)
		if r.ID == "" {
			r.ID = utils.GenerateID()
		}
		releases[i] = r
	}

	if err := Store.ReplaceAll(c.Request.Context(), releases); err != nil {
		logger.Error().Err(err).Msg("Import failed")
		abortWithError(c, apperrors.Internal("Failed to import releases"))
		return
	}

	invalidateStatsCache()
	logger.Info().Int("count", len(releases)).Msg("Releases imported")
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Successfully imported %d releases", len(releases))})
}

func invalidateStatsCache() {
	if err := database.CacheInvalidate(statsCacheKey); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate stats cache")
	}
}
