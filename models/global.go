package models

import (
	"time"

	"gorm.io/gorm"
)

// GlobalStatsID is the primary key of the singleton aggregate row.
const GlobalStatsID = 1

// GlobalStats is the single row summing points across all projects. It is
// only ever updated through an atomic increment inside the completion
// transaction, so at any quiescent point it equals the sum of the
// per-project totals.
type GlobalStats struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TotalPoints      int        `gorm:"not null;default:0" json:"total_points"`
	LastActivityDate *time.Time `gorm:"type:date" json:"last_activity_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// EnsureGlobalStats creates the singleton row if it does not exist yet.
func EnsureGlobalStats(db *gorm.DB) error {
	var count int64
	if err := db.Model(&GlobalStats{}).Where("id = ?", GlobalStatsID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&GlobalStats{ID: GlobalStatsID}).Error
}
