package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:agent" json:"role"`
	ManagerID    *uint     `gorm:"index" json:"manager_id"`
	TeamID       uint      `gorm:"index" json:"team_id"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ManagerAssignment is a single manager_id write, kept as its own type so
// repair batches can be validated and ordered before anything is persisted.
type ManagerAssignment struct {
	UserID    uint
	ManagerID *uint
}
