package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sharanagouda/app-release-tracker/internal/handlers"
	"github.com/sharanagouda/app-release-tracker/internal/middleware"
)

// RegisterReleaseRoutes wires the release dashboard API. Reads are
// public (the dashboard is readable without login), all mutations
// require an admin.
func RegisterReleaseRoutes(r gin.IRouter) {
	releases := r.Group("/releases")
	{
		releases.GET("", middleware.OptionalAuthMiddleware(), handlers.ListReleases)
		releases.GET("/stats", handlers.GetReleaseStats)
		releases.GET("/export/csv", middleware.ExportRateLimit(), handlers.ExportReleasesCSV)
		releases.GET("/export/json", middleware.ExportRateLimit(), handlers.ExportReleasesJSON)
		releases.GET("/:id", handlers.GetRelease)

		protected := releases.Group("")
		protected.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
		{
			protected.POST("", handlers.CreateRelease)
			protected.PUT("/:id", handlers.UpdateRelease)
			protected.PATCH("/:id/rollout", handlers.UpdateRolloutPercentage)
			protected.DELETE("/:id", handlers.DeleteRelease)
			protected.POST("/import", middleware.ExportRateLimit(), handlers.ImportReleases)
		}
	}
}
