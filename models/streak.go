package models

import "time"

// ProjectStreak holds the derived streak and points state for one project.
// Created lazily on the first completion, mutated only inside the
// completion transaction. LongestStreak never decreases.
type ProjectStreak struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ProjectID         uint       `gorm:"uniqueIndex;not null" json:"project_id"`
	CurrentStreak     int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak     int        `gorm:"not null;default:0" json:"longest_streak"`
	LastCompletedDate *time.Time `gorm:"type:date" json:"last_completed_date"`
	TotalPoints       int        `gorm:"not null;default:0" json:"total_points"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
