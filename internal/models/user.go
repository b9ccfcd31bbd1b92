package models

import "time"

// User is an admin panel account. Only relevant when JWT auth is enabled.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
