package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/planpulse/planpulse/models"
	"github.com/planpulse/planpulse/utils"
)

var (
	// ErrTaskNotFound is returned when the referenced task no longer exists.
	ErrTaskNotFound = errors.New("task not found")
	// ErrProjectNotFound is returned when the referenced project no longer exists.
	ErrProjectNotFound = errors.New("project not found")
)

// CompletionResult is what a completion or un-completion reports back to
// callers: the entry's final state, the points actually applied, the streak
// snapshot after the transaction and any badges awarded by it.
type CompletionResult struct {
	TaskID      uint                 `json:"task_id"`
	Completed   bool                 `json:"completed"`
	PointsDelta int                  `json:"points_delta"`
	Streak      models.ProjectStreak `json:"streak"`
	NewBadges   []models.Badge       `json:"new_badges"`
}

// CompletionService coordinates the progress ledger, streak calculator,
// points ledger and badge engine as one transaction per request.
type CompletionService struct {
	db          *gorm.DB
	catalog     *BadgeCatalog
	dailyPoints int
	bonusPoints int

	// Now is the clock used to resolve "today"; replaced in tests.
	Now func() time.Time
}

// NewCompletionService wires the coordinator. dailyPoints and bonusPoints
// are the rewards for a daily and a bonus task completion.
func NewCompletionService(db *gorm.DB, catalog *BadgeCatalog, dailyPoints, bonusPoints int) *CompletionService {
	if dailyPoints <= 0 {
		dailyPoints = 1
	}
	if bonusPoints <= 0 {
		bonusPoints = 2
	}
	return &CompletionService{
		db:          db,
		catalog:     catalog,
		dailyPoints: dailyPoints,
		bonusPoints: bonusPoints,
		Now:         time.Now,
	}
}

// CompleteTask marks the task's ledger slot completed for today and applies
// the derived streak, points and badge updates atomically.
func (s *CompletionService) CompleteTask(taskID uint) (*CompletionResult, error) {
	return s.toggle(taskID, true)
}

// UncompleteTask reverses a completion: the entry flips back, points are
// refunded (clamped at zero), streak state is deliberately left untouched.
func (s *CompletionService) UncompleteTask(taskID uint) (*CompletionResult, error) {
	return s.toggle(taskID, false)
}

func (s *CompletionService) toggle(taskID uint, completed bool) (*CompletionResult, error) {
	day := utils.DayOf(s.Now())
	result := &CompletionResult{TaskID: taskID, NewBadges: []models.Badge{}}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		points := s.dailyPoints
		if task.IsBonus {
			points = s.bonusPoints
		}

		streak, err := lockStreakState(tx, task.ProjectID)
		if err != nil {
			return err
		}

		transition, err := RecordCompletion(tx, task.ProjectID, day, task.GoalIndex(), task.ID, points, completed)
		if err != nil {
			return err
		}

		// The task's own flag follows the request even when the ledger slot
		// already held the value (e.g. a retried request).
		if task.IsCompleted != completed {
			task.IsCompleted = completed
			if completed {
				now := s.Now()
				task.CompletedAt = &now
			} else {
				task.CompletedAt = nil
			}
			if err := tx.Save(&task).Error; err != nil {
				return err
			}
		}

		result.Completed = completed
		result.Streak = *streak
		if transition == NoChange {
			return nil
		}

		switch transition {
		case ToCompleted:
			upd := UpdateStreak(streak.CurrentStreak, streak.LongestStreak, streak.LastCompletedDate, day)
			streak.CurrentStreak = upd.Current
			streak.LongestStreak = upd.Longest
			last := upd.LastCompleted
			streak.LastCompletedDate = &last

			applied, err := applyPointsDelta(tx, streak, points, day)
			if err != nil {
				return err
			}
			result.PointsDelta = applied

			if err := tx.Save(streak).Error; err != nil {
				return err
			}

			awarded, err := s.catalog.CheckAndAward(tx, task.ProjectID, streak.CurrentStreak)
			if err != nil {
				return err
			}
			if len(awarded) > 0 {
				result.NewBadges = awarded
			}

		case ToUncompleted:
			applied, err := applyPointsDelta(tx, streak, -points, day)
			if err != nil {
				return err
			}
			result.PointsDelta = applied
			if err := tx.Save(streak).Error; err != nil {
				return err
			}
		}

		result.Streak = *streak
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetStreakState returns the project's streak snapshot, zero-valued when
// the project has no completions yet.
func (s *CompletionService) GetStreakState(projectID uint) (*models.ProjectStreak, error) {
	var streak models.ProjectStreak
	err := s.db.Where("project_id = ?", projectID).First(&streak).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.ProjectStreak{ProjectID: projectID}, nil
		}
		return nil, err
	}
	return &streak, nil
}

// GetBadges lists the project's earned badges, most recent first.
func (s *CompletionService) GetBadges(projectID uint) ([]models.ProjectBadge, error) {
	var earned []models.ProjectBadge
	err := s.db.Preload("Badge").
		Where("project_id = ?", projectID).
		Order("earned_at DESC").
		Find(&earned).Error
	if err != nil {
		return nil, err
	}
	return earned, nil
}

// GetGlobalPoints returns the aggregate points across all projects.
func (s *CompletionService) GetGlobalPoints() (int, error) {
	var stats models.GlobalStats
	if err := s.db.First(&stats, models.GlobalStatsID).Error; err != nil {
		return 0, err
	}
	return stats.TotalPoints, nil
}

// RecomputeStreak rebuilds current/longest from the ledger's lookback
// window, used to verify or repair streak state.
func (s *CompletionService) RecomputeStreak(projectID uint) (current, longest int, err error) {
	since := utils.DayOf(s.Now()).AddDate(0, 0, -HistoryLookbackDays)
	days, err := CompletionHistory(s.db, projectID, since)
	if err != nil {
		return 0, 0, err
	}
	// history is newest-first; fold oldest-first
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	current, longest = RecomputeFromHistory(days)
	return current, longest, nil
}

// lockStreakState loads the project's streak row under a row lock, creating
// it lazily on first completion. A concurrent first completion loses the
// insert race and re-reads the winner's row.
func lockStreakState(tx *gorm.DB, projectID uint) (*models.ProjectStreak, error) {
	var streak models.ProjectStreak
	err := withUpdateLock(tx).Where("project_id = ?", projectID).First(&streak).Error
	if err == nil {
		return &streak, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	streak = models.ProjectStreak{ProjectID: projectID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&streak).Error; err != nil {
		return nil, err
	}
	if err := withUpdateLock(tx).Where("project_id = ?", projectID).First(&streak).Error; err != nil {
		return nil, err
	}
	return &streak, nil
}

// withUpdateLock adds SELECT ... FOR UPDATE where the dialect supports it.
// SQLite serializes writers itself and rejects the clause.
func withUpdateLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
