package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planpulse/planpulse/models"
	"github.com/planpulse/planpulse/services"
	"github.com/planpulse/planpulse/utils"
)

// StatsController provides planner-wide statistics.
type StatsController struct {
	db          *gorm.DB
	completions *services.CompletionService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB, completions *services.CompletionService) *StatsController {
	return &StatsController{db: db, completions: completions}
}

// GetGlobalStats returns the aggregate points row plus activity counters.
func (s *StatsController) GetGlobalStats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(utils.CacheKeyGlobalStats); ok {
		utils.Success(ctx, json.RawMessage(b))
		return
	}

	var stats models.GlobalStats
	if err := s.db.First(&stats, models.GlobalStatsID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to get stats")
		return
	}

	var projectCount int64
	if err := s.db.Model(&models.Project{}).Where("is_active = ?", true).Count(&projectCount).Error; err != nil {
		projectCount = 0
	}

	var completionsToday int64
	today := utils.Today()
	if err := s.db.Model(&models.ProgressEntry{}).
		Where("day = ? AND completed = ?", today, true).
		Count(&completionsToday).Error; err != nil {
		completionsToday = 0
	}

	var requestsToday int64
	if err := s.db.Model(&models.ApiActivity{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&requestsToday).Error; err != nil {
		requestsToday = 0
	}

	payload := gin.H{
		"total_points":       stats.TotalPoints,
		"last_activity_date": stats.LastActivityDate,
		"project_count":      projectCount,
		"completions_today":  completionsToday,
		"requests_today":     requestsToday,
	}

	utils.CacheSetJSON(utils.CacheKeyGlobalStats, payload, 5*time.Minute)
	utils.Success(ctx, payload)
}
