package models

import "time"

// ProgressEntry is the durable record of one counted completion. The
// composite unique index on (project_id, day, goal_index) is the
// serialization point for concurrent completion requests: a second writer
// on the same key hits the constraint instead of creating a duplicate.
type ProgressEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"index:idx_progress_unit_day_goal,unique;not null" json:"project_id"`
	Day       time.Time `gorm:"index:idx_progress_unit_day_goal,unique;type:date;not null" json:"day"`
	GoalIndex int       `gorm:"index:idx_progress_unit_day_goal,unique;not null;default:0" json:"goal_index"`
	TaskID    uint      `gorm:"index" json:"task_id"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
