package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planpulse/planpulse/models"
)

func TestLoadBadgeCatalog_KeepsOnlyStreakKindSorted(t *testing.T) {
	db := newTestDB(t)

	catalog, err := LoadBadgeCatalog(db)
	require.NoError(t, err)

	require.NotEmpty(t, catalog.streak)
	for i := 1; i < len(catalog.streak); i++ {
		assert.Less(t, catalog.streak[i-1].RequirementValue, catalog.streak[i].RequirementValue)
	}
	for _, b := range catalog.streak {
		assert.Equal(t, models.BadgeKindStreakDays, b.RequirementKind)
	}
}

func TestQualifyingStreakBadges_Thresholds(t *testing.T) {
	db := newTestDB(t)
	catalog, err := LoadBadgeCatalog(db)
	require.NoError(t, err)

	assert.Empty(t, catalog.QualifyingStreakBadges(0))
	assert.Empty(t, catalog.QualifyingStreakBadges(2))

	at3 := catalog.QualifyingStreakBadges(3)
	require.Len(t, at3, 1)
	assert.Equal(t, "On Fire", at3[0].Name)

	at7 := catalog.QualifyingStreakBadges(7)
	require.Len(t, at7, 2)
	assert.Equal(t, "On Fire", at7[0].Name)
	assert.Equal(t, "Lightning", at7[1].Name)

	at100 := catalog.QualifyingStreakBadges(100)
	assert.Len(t, at100, 4)
}

func TestCheckAndAward_AwardsEachBadgeOnce(t *testing.T) {
	db := newTestDB(t)
	catalog, err := LoadBadgeCatalog(db)
	require.NoError(t, err)
	project := createProject(t, db, "badges")

	awarded, err := catalog.CheckAndAward(db, project.ID, 3)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "On Fire", awarded[0].Name)

	// same streak again: nothing new
	awarded, err = catalog.CheckAndAward(db, project.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, awarded)

	// crossing a higher threshold awards only the missing badge
	awarded, err = catalog.CheckAndAward(db, project.ID, 7)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "Lightning", awarded[0].Name)

	var count int64
	require.NoError(t, db.Model(&models.ProjectBadge{}).
		Where("project_id = ?", project.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCheckAndAward_ProjectsDoNotShareBadges(t *testing.T) {
	db := newTestDB(t)
	catalog, err := LoadBadgeCatalog(db)
	require.NoError(t, err)
	alpha := createProject(t, db, "alpha")
	beta := createProject(t, db, "beta")

	_, err = catalog.CheckAndAward(db, alpha.ID, 3)
	require.NoError(t, err)

	awarded, err := catalog.CheckAndAward(db, beta.ID, 3)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "On Fire", awarded[0].Name)
}
