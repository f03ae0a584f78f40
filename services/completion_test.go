package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/planpulse/planpulse/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "planner.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Project{},
		&models.Task{},
		&models.ProgressEntry{},
		&models.ProjectStreak{},
		&models.Badge{},
		&models.ProjectBadge{},
		&models.GlobalStats{},
		&models.ApiActivity{},
	))
	require.NoError(t, models.SeedBadges(db))
	require.NoError(t, models.EnsureGlobalStats(db))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *CompletionService {
	t.Helper()
	catalog, err := LoadBadgeCatalog(db)
	require.NoError(t, err)
	return NewCompletionService(db, catalog, 1, 2)
}

func createProject(t *testing.T, db *gorm.DB, name string) models.Project {
	t.Helper()
	project := models.Project{Name: name, IsActive: true}
	require.NoError(t, db.Create(&project).Error)
	return project
}

func createTask(t *testing.T, db *gorm.DB, projectID uint, title string) models.Task {
	t.Helper()
	task := models.Task{ProjectID: projectID, Title: title}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func onDay(svc *CompletionService, d time.Time) {
	svc.Now = func() time.Time { return d }
}

func globalPoints(t *testing.T, svc *CompletionService) int {
	t.Helper()
	points, err := svc.GetGlobalPoints()
	require.NoError(t, err)
	return points
}

func TestCompleteTask_ConsecutiveAndGapScenario(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	project := createProject(t, db, "writing")

	day1 := day(2026, 4, 1)

	// Day 1
	onDay(svc, day1)
	res, err := svc.CompleteTask(createTask(t, db, project.ID, "draft chapter 1").ID)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 1, res.PointsDelta)
	assert.Equal(t, 1, res.Streak.CurrentStreak)
	assert.Equal(t, 1, res.Streak.LongestStreak)
	assert.Equal(t, 1, res.Streak.TotalPoints)

	// Day 2
	onDay(svc, day1.AddDate(0, 0, 1))
	res, err = svc.CompleteTask(createTask(t, db, project.ID, "draft chapter 2").ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak.CurrentStreak)
	assert.Equal(t, 2, res.Streak.LongestStreak)
	assert.Equal(t, 2, res.Streak.TotalPoints)

	// Day 4, skipping day 3: streak resets, longest stays
	onDay(svc, day1.AddDate(0, 0, 3))
	task4 := createTask(t, db, project.ID, "draft chapter 3")
	res, err = svc.CompleteTask(task4.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak.CurrentStreak)
	assert.Equal(t, 2, res.Streak.LongestStreak)
	assert.Equal(t, 3, res.Streak.TotalPoints)

	// Re-completing day 4's slot changes nothing
	res, err = svc.CompleteTask(task4.ID)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Zero(t, res.PointsDelta)
	assert.Empty(t, res.NewBadges)
	assert.Equal(t, 3, res.Streak.TotalPoints)
	assert.Equal(t, 3, globalPoints(t, svc))
}

func TestCompleteTask_SecondCallSameDayIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	project := createProject(t, db, "reading")
	task := createTask(t, db, project.ID, "read 20 pages")

	onDay(svc, day(2026, 4, 10))
	first, err := svc.CompleteTask(task.ID)
	require.NoError(t, err)
	second, err := svc.CompleteTask(task.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, first.PointsDelta)
	assert.Zero(t, second.PointsDelta)
	assert.Empty(t, second.NewBadges)
	assert.Equal(t, first.Streak.CurrentStreak, second.Streak.CurrentStreak)
	assert.Equal(t, first.Streak.TotalPoints, second.Streak.TotalPoints)
}

func TestCompleteTask_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.CompleteTask(12345)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUncompleteTask_RefundsPointsKeepsStreak(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	project := createProject(t, db, "gym")
	task := createTask(t, db, project.ID, "leg day")

	onDay(svc, day(2026, 4, 10))
	_, err := svc.CompleteTask(task.ID)
	require.NoError(t, err)

	res, err := svc.UncompleteTask(task.ID)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, -1, res.PointsDelta)
	assert.Zero(t, res.Streak.TotalPoints)
	// streak state is deliberately not recalculated on undo
	assert.Equal(t, 1, res.Streak.CurrentStreak)
	assert.Equal(t, 1, res.Streak.LongestStreak)
	assert.Zero(t, globalPoints(t, svc))

	// completing again the same day re-applies points without growing the streak
	res, err = svc.CompleteTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.PointsDelta)
	assert.Equal(t, 1, res.Streak.CurrentStreak)
	assert.Equal(t, 1, res.Streak.TotalPoints)
}

func TestUncompleteTask_NeverCompletedIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	project := createProject(t, db, "piano")
	task := createTask(t, db, project.ID, "practice scales")

	onDay(svc, day(2026, 4, 10))
	res, err := svc.UncompleteTask(task.ID)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Zero(t, res.PointsDelta)
	assert.Zero(t, globalPoints(t, svc))
}

func TestUncompleteTask_NeverDrivesPointsNegative(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	project := createProject(t, db, "spanish")
	task := createTask(t, db, project.ID, "vocab review")

	onDay(svc, day(2026, 4, 10))
	_, err := svc.CompleteTask(task.ID)
	require.NoError(t, err)

	// simulate inconsistent prior data: totals already drained
	require.NoError(t, db.Model(&models.ProjectStreak{}).
		Where("project_id = ?", project.ID).
		Update("total_points", 0).Error)
	require.NoError(t, db.Model(&models.GlobalStats{}).
		Where("id = ?", models.GlobalStatsID).
		Update("total_points", 0).Error)

	res, err := svc.UncompleteTask(task.ID)
	require.NoError(t, err)
	assert.Zero(t, res.PointsDelta)
	assert.Zero(t, res.Streak.TotalPoints)
	assert.Zero(t, globalPoints(t, svc))
}

func TestCompleteTask_BonusTaskUsesOwnLedgerSlot(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	project := createProject(t, db, "garden")
	daily := createTask(t, db, project.ID, "water plants")
	bonus := models.Task{ProjectID: project.ID, Title: "weed the beds", IsBonus: true}
	require.NoError(t, db.Create(&bonus).Error)

	onDay(svc, day(2026, 4, 10))
	_, err := svc.CompleteTask(daily.ID)
	require.NoError(t, err)

	res, err := svc.CompleteTask(bonus.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PointsDelta)
	// second completion on the same day does not extend the streak
	assert.Equal(t, 1, res.Streak.CurrentStreak)
	assert.Equal(t, 3, res.Streak.TotalPoints)
	assert.Equal(t, 3, globalPoints(t, svc))
}

func TestGlobalAggregateEqualsSumOfProjects(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	alpha := createProject(t, db, "alpha")
	beta := createProject(t, db, "beta")

	start := day(2026, 4, 1)
	for i := 0; i < 3; i++ {
		onDay(svc, start.AddDate(0, 0, i))
		_, err := svc.CompleteTask(createTask(t, db, alpha.ID, "a").ID)
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		onDay(svc, start.AddDate(0, 0, i))
		_, err := svc.CompleteTask(createTask(t, db, beta.ID, "b").ID)
		require.NoError(t, err)
	}

	var sum int
	require.NoError(t, db.Model(&models.ProjectStreak{}).
		Select("COALESCE(SUM(total_points),0)").Scan(&sum).Error)
	assert.Equal(t, 5, sum)
	assert.Equal(t, sum, globalPoints(t, svc))
}

func TestBadges_AwardedOnceAtThreshold(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	project := createProject(t, db, "running")

	start := day(2026, 4, 1)
	var res *CompletionResult
	var err error
	for i := 0; i < 3; i++ {
		onDay(svc, start.AddDate(0, 0, i))
		res, err = svc.CompleteTask(createTask(t, db, project.ID, "run").ID)
		require.NoError(t, err)
	}
	require.Len(t, res.NewBadges, 1)
	assert.Equal(t, "On Fire", res.NewBadges[0].Name)

	// day 4: streak 4, no new badge for the same threshold
	onDay(svc, start.AddDate(0, 0, 3))
	res, err = svc.CompleteTask(createTask(t, db, project.ID, "run").ID)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Streak.CurrentStreak)
	assert.Empty(t, res.NewBadges)

	// break the streak, climb back past the threshold: still no re-award
	for i := 6; i < 9; i++ {
		onDay(svc, start.AddDate(0, 0, i))
		res, err = svc.CompleteTask(createTask(t, db, project.ID, "run").ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, res.Streak.CurrentStreak)
	assert.Empty(t, res.NewBadges)

	badges, err := svc.GetBadges(project.ID)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "On Fire", badges[0].Badge.Name)
}

func TestStreakInvariant_LongestNeverBelowCurrent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	project := createProject(t, db, "meditation")

	start := day(2026, 4, 1)
	offsets := []int{0, 1, 2, 5, 6, 7, 8, 12}
	for _, off := range offsets {
		onDay(svc, start.AddDate(0, 0, off))
		res, err := svc.CompleteTask(createTask(t, db, project.ID, "sit").ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Streak.LongestStreak, res.Streak.CurrentStreak)
		assert.GreaterOrEqual(t, res.Streak.CurrentStreak, 0)
	}
}

func TestRecomputeStreak_MatchesStoredState(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	project := createProject(t, db, "journal")

	start := day(2026, 4, 1)
	for _, off := range []int{0, 1, 3, 4, 5} {
		onDay(svc, start.AddDate(0, 0, off))
		_, err := svc.CompleteTask(createTask(t, db, project.ID, "write").ID)
		require.NoError(t, err)
	}

	onDay(svc, start.AddDate(0, 0, 5))
	current, longest, err := svc.RecomputeStreak(project.ID)
	require.NoError(t, err)

	state, err := svc.GetStreakState(project.ID)
	require.NoError(t, err)
	assert.Equal(t, state.CurrentStreak, current)
	assert.Equal(t, state.LongestStreak, longest)
}

func TestGetStreakState_UnknownProjectIsZeroValued(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	state, err := svc.GetStreakState(777)
	require.NoError(t, err)
	assert.Zero(t, state.CurrentStreak)
	assert.Zero(t, state.LongestStreak)
	assert.Zero(t, state.TotalPoints)
	assert.Nil(t, state.LastCompletedDate)
}
