package models

import "time"

// Project is the unit whose streak and points are tracked. Each active
// project surfaces one daily task in the planner UI.
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Color       string    `gorm:"size:7;default:'#3B82F6'" json:"color"`
	Icon        string    `gorm:"size:10" json:"icon"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tasks       []Task    `json:"-"`
}
