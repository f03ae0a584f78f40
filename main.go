package main

import (
	"github.com/planpulse/planpulse/config"
	"github.com/planpulse/planpulse/models"
	"github.com/planpulse/planpulse/routes"
	"github.com/planpulse/planpulse/services"
	"github.com/planpulse/planpulse/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	// Fix the civil time zone before anything resolves "today"
	if err := utils.InitTimeZone(cfg.TimeZone); err != nil {
		utils.Sugar.Fatalf("unknown time zone %q: %v", cfg.TimeZone, err)
	}

	db := config.InitDatabase(
		&models.Project{},
		&models.Task{},
		&models.ProgressEntry{},
		&models.ProjectStreak{},
		&models.Badge{},
		&models.ProjectBadge{},
		&models.GlobalStats{},
		&models.ApiActivity{},
	)

	if err := models.SeedBadges(db); err != nil {
		utils.Sugar.Fatalf("failed to seed badge catalog: %v", err)
	}
	if err := models.EnsureGlobalStats(db); err != nil {
		utils.Sugar.Fatalf("failed to initialize global stats: %v", err)
	}

	catalog, err := services.LoadBadgeCatalog(db)
	if err != nil {
		utils.Sugar.Fatalf("failed to load badge catalog: %v", err)
	}
	completions := services.NewCompletionService(db, catalog, cfg.DailyTaskPoints, cfg.BonusTaskPoints)

	r := routes.SetupRouter(db, completions)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
