package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/sharanagouda/app-release-tracker/internal/middleware"
	"github.com/sharanagouda/app-release-tracker/internal/models"
	"github.com/sharanagouda/app-release-tracker/internal/services"
	"github.com/sharanagouda/app-release-tracker/internal/store"
)

func setupReleaseTest() *store.MemoryStore {
	gin.SetMode(gin.TestMode)
	mem := store.NewMemoryStore()
	Store = mem
	return mem
}

func jsonCtx(t *testing.T, method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func asAdmin(c *gin.Context) {
	c.Set("userId", "admin1")
	c.Set("userEmail", "admin@example.com")
	c.Set("userName", "Admin")
}

func seedRelease(t *testing.T, mem *store.MemoryStore, release models.Release) {
	t.Helper()
	_, err := mem.Put(context.Background(), release)
	assert.NoError(t, err)
}

func testRelease(id string, percentage int, history []models.RolloutHistoryEntry) models.Release {
	return models.Release{
		ID:          id,
		ReleaseDate: "2025-06-01",
		ReleaseName: "App Release 5.20.0",
		Environment: "PROD",
		Changes:     []string{"Crash fixes"},
		CreatedAt:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Platforms: datatypes.NewJSONSlice([]models.PlatformRelease{
			{
				Platform: models.PlatformIOS,
				ConceptReleases: []models.ConceptRelease{
					{
						ID:                "ios-1",
						Concepts:          []string{models.AllConcepts},
						Version:           "5.20.0",
						BuildID:           "5200",
						RolloutPercentage: percentage,
						Status:            models.StatusInProgress,
						RolloutHistory:    history,
					},
				},
			},
		}),
	}
}

func TestCreateRelease(t *testing.T) {
	mem := setupReleaseTest()

	c, w := jsonCtx(t, "POST", "/api/releases", ReleaseInput{
		ReleaseDate: "2025-06-01",
		ReleaseName: "App Release 5.20.0",
		Environment: "PROD",
		Platforms: []models.PlatformRelease{
			{Platform: models.PlatformIOS, ConceptReleases: []models.ConceptRelease{
				{ID: "ios-1", Concepts: []string{models.AllConcepts}, Version: "5.20.0", BuildID: "5200"},
			}},
		},
	})
	asAdmin(c)

	CreateRelease(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Release models.Release `json:"release"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Release.ID)
	assert.Equal(t, "admin@example.com", resp.Release.CreatedBy)
	assert.Equal(t, "Admin", resp.Release.CreatedByName)

	stored, err := mem.GetOne(context.Background(), resp.Release.ID)
	assert.NoError(t, err)
	assert.Equal(t, "App Release 5.20.0", stored.ReleaseName)
}

func TestCreateRelease_MissingRequiredFields(t *testing.T) {
	setupReleaseTest()

	c, w := jsonCtx(t, "POST", "/api/releases", map[string]string{"releaseName": "nameless"})
	asAdmin(c)

	CreateRelease(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRelease_AppendsRolloutHistory(t *testing.T) {
	mem := setupReleaseTest()
	seedRelease(t, mem, testRelease("r1", 20, nil))

	c, w := jsonCtx(t, "PUT", "/api/releases/r1", ReleaseInput{
		ReleaseDate: "2025-06-01",
		ReleaseName: "App Release 5.20.0",
		Environment: "PROD",
		Platforms: []models.PlatformRelease{
			{Platform: models.PlatformIOS, ConceptReleases: []models.ConceptRelease{
				{ID: "ios-1", Concepts: []string{models.AllConcepts}, Version: "5.20.0", BuildID: "5200", RolloutPercentage: 50, Status: models.StatusInProgress},
			}},
		},
	})
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	asAdmin(c)

	UpdateRelease(c)

	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := mem.GetOne(context.Background(), "r1")
	assert.NoError(t, err)

	cr := services.Normalize(stored).Platforms[0].ConceptReleases[0]
	assert.Equal(t, 50, cr.RolloutPercentage)
	assert.Len(t, cr.RolloutHistory, 1)
	assert.Equal(t, "Updated from 20% to 50%", cr.RolloutHistory[0].Notes)
	assert.Equal(t, "admin@example.com", cr.RolloutHistory[0].UpdatedBy)
}

func TestUpdateRelease_MissingIDIsNotFound(t *testing.T) {
	mem := setupReleaseTest()

	c, w := jsonCtx(t, "PUT", "/api/releases/ghost", ReleaseInput{
		ReleaseDate: "2025-06-01",
		ReleaseName: "App Release 5.20.0",
		Environment: "PROD",
	})
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}
	asAdmin(c)

	UpdateRelease(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// An update must never fall back to creating a fresh record.
	all, err := mem.GetAll(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateRolloutPercentage(t *testing.T) {
	mem := setupReleaseTest()
	seedRelease(t, mem, testRelease("r1", 20, []models.RolloutHistoryEntry{
		{Percentage: 20, Date: "2025-06-01T10:00:00Z"},
	}))

	platformIdx, crIdx, pct := 0, 0, 75
	c, w := jsonCtx(t, "PATCH", "/api/releases/r1/rollout", RolloutUpdateInput{
		PlatformIndex:       &platformIdx,
		ConceptReleaseIndex: &crIdx,
		Percentage:          &pct,
	})
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	asAdmin(c)

	UpdateRolloutPercentage(c)

	assert.Equal(t, http.StatusOK, w.Code)

	stored, _ := mem.GetOne(context.Background(), "r1")
	cr := services.Normalize(stored).Platforms[0].ConceptReleases[0]
	assert.Equal(t, 75, cr.RolloutPercentage)
	assert.Len(t, cr.RolloutHistory, 2)
	assert.Equal(t, "Updated from 20% to 75%", cr.RolloutHistory[0].Notes)
}

func TestUpdateRolloutPercentage_BadIndex(t *testing.T) {
	mem := setupReleaseTest()
	seedRelease(t, mem, testRelease("r1", 20, nil))

	platformIdx, crIdx, pct := 4, 0, 75
	c, w := jsonCtx(t, "PATCH", "/api/releases/r1/rollout", RolloutUpdateInput{
		PlatformIndex:       &platformIdx,
		ConceptReleaseIndex: &crIdx,
		Percentage:          &pct,
	})
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	asAdmin(c)

	UpdateRolloutPercentage(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRelease(t *testing.T) {
	mem := setupReleaseTest()
	seedRelease(t, mem, testRelease("r1", 20, nil))

	c, w := jsonCtx(t, "DELETE", "/api/releases/r1", nil)
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	asAdmin(c)

	DeleteRelease(c)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := mem.GetOne(context.Background(), "r1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	c, w = jsonCtx(t, "DELETE", "/api/releases/r1", nil)
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	asAdmin(c)

	DeleteRelease(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListReleases_Filters(t *testing.T) {
	mem := setupReleaseTest()
	seedRelease(t, mem, testRelease("r1", 20, nil))

	uat := testRelease("r2", 0, nil)
	uat.Environment = "UAT5"
	uat.CreatedAt = uat.CreatedAt.Add(time.Hour)
	seedRelease(t, mem, uat)

	c, w := jsonCtx(t, "GET", "/api/releases?environment=UAT5", nil)
	ListReleases(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Releases []models.Release `json:"releases"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Releases, 1)
	assert.Equal(t, "r2", resp.Releases[0].ID)
}

func TestGetRelease_IncludesOverallStatus(t *testing.T) {
	mem := setupReleaseTest()
	seedRelease(t, mem, testRelease("r1", 20, nil))

	c, w := jsonCtx(t, "GET", "/api/releases/r1", nil)
	c.Params = gin.Params{{Key: "id", Value: "r1"}}

	GetRelease(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OverallStatus string `json:"overallStatus"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "In Progress", resp.OverallStatus)
}

func TestGetReleaseStats(t *testing.T) {
	mem := setupReleaseTest()
	seedRelease(t, mem, testRelease("r1", 20, nil))

	done := testRelease("r2", 100, nil)
	platforms := []models.PlatformRelease(done.Platforms)
	platforms[0].ConceptReleases[0].Status = models.StatusComplete
	done.Platforms = datatypes.NewJSONSlice(platforms)
	seedRelease(t, mem, done)

	c, w := jsonCtx(t, "GET", "/api/releases/stats", nil)
	GetReleaseStats(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats services.ReleaseStats `json:"stats"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Stats.TotalReleases)
	assert.Equal(t, 1, resp.Stats.ActiveReleases)
	assert.Equal(t, 1, resp.Stats.CompletedReleases)
}

func TestExportReleasesCSV(t *testing.T) {
	mem := setupReleaseTest()
	seedRelease(t, mem, testRelease("r1", 20, nil))

	c, w := jsonCtx(t, "GET", "/api/releases/export/csv", nil)
	ExportReleasesCSV(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "releases_export_")
	assert.Contains(t, w.Body.String(), "Release ID,Release Date")
	assert.Contains(t, w.Body.String(), "ios-1")
}

func TestImportReleases_RoundTripsExport(t *testing.T) {
	mem := setupReleaseTest()
	seedRelease(t, mem, testRelease("r1", 20, []models.RolloutHistoryEntry{
		{Percentage: 20, Date: "2025-06-01T10:00:00Z", Notes: "Initial"},
	}))

	c, w := jsonCtx(t, "GET", "/api/releases/export/json", nil)
	ExportReleasesJSON(c)
	assert.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.Bytes()

	// Wipe and re-import the export.
	assert.NoError(t, mem.ReplaceAll(context.Background(), nil))

	var payload []models.Release
	assert.NoError(t, json.Unmarshal(exported, &payload))

	c, w = jsonCtx(t, "POST", "/api/releases/import", payload)
	asAdmin(c)
	ImportReleases(c)
	assert.Equal(t, http.StatusOK, w.Code)

	restored, err := mem.GetOne(context.Background(), "r1")
	assert.NoError(t, err)

	cr := services.Normalize(restored).Platforms[0].ConceptReleases[0]
	assert.Len(t, cr.RolloutHistory, 1)
	assert.Equal(t, "Initial", cr.RolloutHistory[0].Notes)
}

func TestCreateRelease_RejectsNonArrayPlatforms(t *testing.T) {
	mem := setupReleaseTest()

	c, w := jsonCtx(t, "POST", "/api/releases", map[string]interface{}{
		"releaseDate": "2025-06-01",
		"releaseName": "App Release 5.20.0",
		"environment": "PROD",
		"platforms":   "not-a-list",
	})
	asAdmin(c)

	CreateRelease(c)

	// Malformed payloads are rejected at the boundary; nothing is stored.
	assert.Equal(t, http.StatusBadRequest, w.Code)

	all, err := mem.GetAll(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetRelease_NotFoundMappedByErrorMiddleware(t *testing.T) {
	setupReleaseTest()

	r := gin.New()
	r.Use(middleware.ErrorHandlerMiddleware())
	r.GET("/api/releases/:id", GetRelease)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/releases/ghost", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Release not found"}`, w.Body.String())
}
