package models

import "time"

// Task belongs to a project. The first pending non-bonus task assigned to
// today (or unassigned) is the project's daily task; tasks promoted via the
// next-task flow become bonus tasks worth extra points.
type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ProjectID    uint       `gorm:"index;not null" json:"project_id"`
	Title        string     `gorm:"size:500;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Priority     int        `gorm:"default:0" json:"priority"`
	IsCompleted  bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at"`
	AssignedDate *time.Time `gorm:"type:date" json:"assigned_date"`
	IsBonus      bool       `gorm:"default:false" json:"is_bonus"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// GoalIndex maps a task onto its slot in the progress ledger: the daily
// task occupies slot 0, a bonus task slot 1.
func (t *Task) GoalIndex() int {
	if t.IsBonus {
		return 1
	}
	return 0
}
