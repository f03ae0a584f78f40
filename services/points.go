package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/planpulse/planpulse/models"
)

// applyPointsDelta adds delta to the locked streak row and mirrors the same
// amount onto the global aggregate with an atomic increment. The delta is
// clamped so a reversal can never drive a project's total below zero, and
// the clamped amount is what reaches the global row, keeping the aggregate
// equal to the sum of the per-project totals. Returns the amount actually
// applied.
func applyPointsDelta(tx *gorm.DB, streak *models.ProjectStreak, delta int, day time.Time) (int, error) {
	if delta == 0 {
		return 0, nil
	}

	effective := delta
	if streak.TotalPoints+delta < 0 {
		effective = -streak.TotalPoints
	}
	streak.TotalPoints += effective

	err := tx.Model(&models.GlobalStats{}).
		Where("id = ?", models.GlobalStatsID).
		Updates(map[string]interface{}{
			"total_points":       gorm.Expr("total_points + ?", effective),
			"last_activity_date": day,
		}).Error
	if err != nil {
		return 0, err
	}
	return effective, nil
}
