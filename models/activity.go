package models

import "time"

// ApiActivity stores aggregated request counts per day and path, used by
// the stats endpoint to report how active the planner has been.
type ApiActivity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"index:idx_activity_date_path,unique;type:date;not null" json:"date"`
	Path      string    `gorm:"index:idx_activity_date_path,unique;size:255;not null" json:"path"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
