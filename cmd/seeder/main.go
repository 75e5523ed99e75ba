package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/sharanagouda/app-release-tracker/internal/config"
	"github.com/sharanagouda/app-release-tracker/internal/database"
	"github.com/sharanagouda/app-release-tracker/internal/models"
	"github.com/sharanagouda/app-release-tracker/internal/services"
	"github.com/sharanagouda/app-release-tracker/internal/store"
	"github.com/sharanagouda/app-release-tracker/pkg/utils"
)

// Concepts the retail group ships builds for.
var concepts = []string{
	"lifestyle",
	"babyshop",
	"splash",
	"shoemart",
	"centrepoint",
	"shoexpress",
	"mothercare",
	"homecentre",
	"homebox",
	"max",
}

func main() {
	config.LoadConfig()
	database.Connect()

	log.Println("🔄 Running migrations (just in case)...")
	if err := database.DB.AutoMigrate(&models.User{}, &models.Release{}); err != nil {
		log.Fatalf("❌ Failed to migrate: %v", err)
	}

	admin := ensureAdmin()
	log.Printf("👤 Admin: %s", admin.Email)

	seedReleases(admin)

	log.Println("✅ Seeding complete")
}

func ensureAdmin() models.User {
	var admin models.User
	if err := database.DB.Where("role = ?", models.RoleAdmin).First(&admin).Error; err == nil {
		return admin
	}

	email := config.AppConfig.AdminEmail
	if email == "" {
		email = "admin@releasetracker.local"
	}
	password := config.AppConfig.AdminPassword
	if password == "" {
		password = "changeme123"
		log.Println("⚠️ ADMIN_PASSWORD not set, using default (change it!)")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash admin password: %v", err)
	}

	admin = models.User{
		ID:       utils.GenerateID(),
		Name:     utils.DisplayNameFromEmail(email),
		Email:    email,
		Username: "admin",
		Password: string(hash),
		Role:     models.RoleAdmin,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("❌ Failed to create admin: %v", err)
	}
	log.Println("👤 Created bootstrap admin user")
	return admin
}

func seedReleases(admin models.User) {
	releases := store.NewGormStore(database.DB)
	ctx := context.Background()

	existing, err := releases.GetAll(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to check existing releases: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("⏭️  %d releases already present, skipping sample data", len(existing))
		return
	}

	who := services.Identity{Email: admin.Email, DisplayName: admin.Name}
	now := time.Now()

	samples := []models.Release{
		{
			ReleaseDate: now.AddDate(0, 0, -14).Format("2006-01-02"),
			ReleaseName: "App Release 5.24.0",
			Environment: "PROD",
			Changes:     []string{"Checkout redesign", "Wishlist sync fixes"},
			Platforms: datatypes.NewJSONSlice([]models.PlatformRelease{
				{
					Platform: models.PlatformIOS,
					ConceptReleases: []models.ConceptRelease{
						{
							ID:                "ios-1",
							Concepts:          []string{models.AllConcepts},
							Version:           "5.24.0",
							BuildID:           "5240",
							RolloutPercentage: 100,
							Status:            models.StatusComplete,
						},
					},
				},
				{
					Platform: models.PlatformAndroidGMS,
					ConceptReleases: []models.ConceptRelease{
						{
							ID:                "android-gms-1",
							Concepts:          []string{"max", "lifestyle"},
							Version:           "5.24.0",
							BuildID:           "52400",
							RolloutPercentage: 50,
							Status:            models.StatusInProgress,
						},
						{
							ID:                "android-gms-2",
							Concepts:          remainingConcepts("max", "lifestyle"),
							Version:           "5.24.1",
							BuildID:           "52410",
							RolloutPercentage: 10,
							Status:            models.StatusInProgress,
						},
					},
				},
			}),
		},
		{
			ReleaseDate: now.AddDate(0, 0, -3).Format("2006-01-02"),
			ReleaseName: "App Release 5.25.0",
			Environment: "UAT5",
			Changes:     []string{"Loyalty points on PDP"},
			Platforms: datatypes.NewJSONSlice([]models.PlatformRelease{
				{
					Platform: models.PlatformAndroidHMS,
					ConceptReleases: []models.ConceptRelease{
						{
							ID:       "android-hms-1",
							Concepts: []string{models.AllConcepts},
							Version:  "5.25.0",
							BuildID:  "52500",
							Status:   models.StatusNotStarted,
						},
					},
				},
			}),
		},
	}

	for _, sample := range samples {
		release := services.ApplyCreate(sample, utils.GenerateID(), who, now)
		if _, err := releases.Put(ctx, release); err != nil {
			log.Fatalf("❌ Failed to seed release %q: %v", release.ReleaseName, err)
		}
		log.Printf("📦 Seeded release %q", release.ReleaseName)
	}
}

func remainingConcepts(exclude ...string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, c := range exclude {
		excluded[c] = true
	}
	var out []string
	for _, c := range concepts {
		if !excluded[c] {
			out = append(out, c)
		}
	}
	return out
}
