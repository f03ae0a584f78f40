package models

import (
	"time"

	"gorm.io/gorm"
)

// Requirement kinds understood by the badge catalog. Only streak-days
// badges are evaluated by the award path; the other kinds are carried as
// catalog data until they get an evaluation rule.
const (
	BadgeKindStreakDays = "streak_days"
	BadgeKindPoints     = "points"
	BadgeKindCustom     = "custom"
)

// Badge is a read-only catalog entry seeded once at boot.
type Badge struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:100;not null" json:"name"`
	Description      string    `gorm:"size:255" json:"description"`
	Icon             string    `gorm:"size:10" json:"icon"`
	Category         string    `gorm:"size:50" json:"category"`
	RequirementKind  string    `gorm:"size:50;not null" json:"requirement_kind"`
	RequirementValue int       `gorm:"not null;default:0" json:"requirement_value"`
	ThemeClass       string    `gorm:"size:50" json:"theme_class"`
	Rarity           string    `gorm:"size:20;default:'common'" json:"rarity"`
	CreatedAt        time.Time `json:"created_at"`
}

// ProjectBadge records a badge earned by a project. The unique index on
// (project_id, badge_id) makes awarding idempotent: inserting the same
// pair twice is a constraint no-op, never a second award.
type ProjectBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"index:idx_project_badge,unique;not null" json:"project_id"`
	BadgeID   uint      `gorm:"index:idx_project_badge,unique;not null" json:"badge_id"`
	EarnedAt  time.Time `json:"earned_at"`
	Badge     Badge     `json:"badge"`
}

// SeedBadges inserts the default catalog when the badges table is empty.
// Rows match the original planner catalog; running twice is harmless.
func SeedBadges(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Badge{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []Badge{
		{Name: "On Fire", Description: "3 day streak", Icon: "🔥", Category: "streak", RequirementKind: BadgeKindStreakDays, RequirementValue: 3, ThemeClass: "theme-fire", Rarity: "common"},
		{Name: "Lightning", Description: "7 day streak", Icon: "⚡", Category: "streak", RequirementKind: BadgeKindStreakDays, RequirementValue: 7, ThemeClass: "theme-lightning", Rarity: "uncommon"},
		{Name: "Diamond Hands", Description: "30 day streak", Icon: "💎", Category: "streak", RequirementKind: BadgeKindStreakDays, RequirementValue: 30, ThemeClass: "theme-diamond", Rarity: "rare"},
		{Name: "Legendary", Description: "100 day streak", Icon: "👑", Category: "streak", RequirementKind: BadgeKindStreakDays, RequirementValue: 100, ThemeClass: "theme-legendary", Rarity: "legendary"},
		{Name: "Project Master", Description: "Earn 50 points in one project", Icon: "🎯", Category: "completion", RequirementKind: BadgeKindPoints, RequirementValue: 50, Rarity: "rare"},
		{Name: "Multitasker", Description: "Work on 5 projects in one day", Icon: "🤹", Category: "daily", RequirementKind: BadgeKindCustom, RequirementValue: 5, Rarity: "uncommon"},
	}
	return db.Create(&defaults).Error
}
