package services

import (
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/planpulse/planpulse/models"
)

// BadgeCatalog holds the seeded badge definitions in memory. Definitions
// are read-only at runtime, so thresholds are checked with plain
// comparisons instead of per-request catalog queries. Only streak-days
// badges have an evaluation rule; other kinds are carried but inert.
type BadgeCatalog struct {
	streak []models.Badge
}

// LoadBadgeCatalog reads the catalog once and keeps the streak-days
// definitions sorted ascending by threshold.
func LoadBadgeCatalog(db *gorm.DB) (*BadgeCatalog, error) {
	var all []models.Badge
	if err := db.Find(&all).Error; err != nil {
		return nil, err
	}

	c := &BadgeCatalog{}
	for _, b := range all {
		if b.RequirementKind == models.BadgeKindStreakDays {
			c.streak = append(c.streak, b)
		}
	}
	sort.Slice(c.streak, func(i, j int) bool {
		return c.streak[i].RequirementValue < c.streak[j].RequirementValue
	})
	return c, nil
}

// QualifyingStreakBadges returns the definitions whose threshold is
// reached by the given streak, ascending by threshold.
func (c *BadgeCatalog) QualifyingStreakBadges(currentStreak int) []models.Badge {
	var out []models.Badge
	for _, b := range c.streak {
		if b.RequirementValue > currentStreak {
			break
		}
		out = append(out, b)
	}
	return out
}

// CheckAndAward awards every qualifying streak badge the project does not
// hold yet and returns the newly awarded ones. The unique (project, badge)
// index makes the insert a no-op under a duplicate concurrent call, so an
// already-held badge is treated as satisfied, never as an error.
func (c *BadgeCatalog) CheckAndAward(tx *gorm.DB, projectID uint, currentStreak int) ([]models.Badge, error) {
	qualifying := c.QualifyingStreakBadges(currentStreak)
	if len(qualifying) == 0 {
		return nil, nil
	}

	var awardedIDs []uint
	if err := tx.Model(&models.ProjectBadge{}).
		Where("project_id = ?", projectID).
		Pluck("badge_id", &awardedIDs).Error; err != nil {
		return nil, err
	}
	held := make(map[uint]bool, len(awardedIDs))
	for _, id := range awardedIDs {
		held[id] = true
	}

	var awarded []models.Badge
	for _, badge := range qualifying {
		if held[badge.ID] {
			continue
		}
		row := models.ProjectBadge{
			ProjectID: projectID,
			BadgeID:   badge.ID,
			EarnedAt:  time.Now(),
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).Create(&row)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			awarded = append(awarded, badge)
		}
	}
	return awarded, nil
}
