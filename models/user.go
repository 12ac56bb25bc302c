package models

import (
	"time"
)

// Available theme preferences. Anything else is rejected at the API boundary.
const (
	ThemeCute   = "cute"
	ThemeDeadly = "deadly"
)

// User is an account created at registration. Users are never hard-deleted.
type User struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Username        string     `json:"username" gorm:"size:80;uniqueIndex;not null"`
	Email           string     `json:"email" gorm:"size:120;uniqueIndex;not null"`
	PasswordHash    string     `json:"-" gorm:"size:256;not null"`
	ThemePreference string     `json:"theme_preference" gorm:"size:20;default:'cute'"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
	IsActive        bool       `json:"is_active" gorm:"default:true"`
	IsAdmin         bool       `json:"is_admin" gorm:"default:false"`

	Progress         []GameProgress    `json:"progress,omitempty" gorm:"foreignKey:UserID"`
	MultiplayerStats *MultiplayerStats `json:"multiplayer_stats,omitempty" gorm:"foreignKey:UserID"`
}

// ValidTheme reports whether theme is one of the supported preferences.
func ValidTheme(theme string) bool {
	return theme == ThemeCute || theme == ThemeDeadly
}
