package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/planpulse/planpulse/models"
	"github.com/planpulse/planpulse/utils"
)

// Transition describes what a ledger write actually changed. Streak,
// points and badge updates apply only on a real transition, never per
// request, so retried or repeated calls cannot double-count.
type Transition int

const (
	NoChange Transition = iota
	ToCompleted
	ToUncompleted
)

// HistoryLookbackDays bounds how far back the ledger is scanned when
// recomputing streaks; nothing older can influence a current streak.
const HistoryLookbackDays = 30

// RecordCompletion inserts or updates the progress entry for the exact
// (project, day, goal index) key and reports the transition. A concurrent
// insert on the same key surfaces as a duplicate-key error; it is retried
// once as a re-read, which then observes the committed row and reports
// NoChange instead of failing the request.
func RecordCompletion(tx *gorm.DB, projectID uint, day time.Time, goalIndex int, taskID uint, points int, completed bool) (Transition, error) {
	day = utils.DayOf(day)

	for attempt := 0; attempt < 2; attempt++ {
		var entry models.ProgressEntry
		err := tx.Where("project_id = ? AND day = ? AND goal_index = ?", projectID, day, goalIndex).
			First(&entry).Error

		if err == nil {
			if entry.Completed == completed {
				return NoChange, nil
			}
			entry.Completed = completed
			entry.TaskID = taskID
			entry.Points = points
			if err := tx.Save(&entry).Error; err != nil {
				return NoChange, err
			}
			if completed {
				return ToCompleted, nil
			}
			return ToUncompleted, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return NoChange, err
		}

		// Un-completing a key that was never completed records nothing.
		if !completed {
			return NoChange, nil
		}

		entry = models.ProgressEntry{
			ProjectID: projectID,
			Day:       day,
			GoalIndex: goalIndex,
			TaskID:    taskID,
			Completed: true,
			Points:    points,
		}
		err = tx.Create(&entry).Error
		if err == nil {
			return ToCompleted, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return NoChange, err
		}
		// lost the race on the unique key; loop re-reads the winner's row
	}
	return NoChange, nil
}

// CompletionHistory returns the distinct days on which the project has at
// least one completed entry, newest first, within the lookback window
// ending at sinceDay's side of history.
func CompletionHistory(db *gorm.DB, projectID uint, sinceDay time.Time) ([]time.Time, error) {
	var days []time.Time
	err := db.Model(&models.ProgressEntry{}).
		Where("project_id = ? AND completed = ? AND day >= ?", projectID, true, utils.DayOf(sinceDay)).
		Distinct("day").
		Order("day DESC").
		Pluck("day", &days).Error
	if err != nil {
		return nil, err
	}
	return days, nil
}
