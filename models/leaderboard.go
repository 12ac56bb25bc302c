package models

import (
	"time"
)

// Leaderboard is a derived projection, recomputed in batch by the aggregator
// rather than maintained incrementally. Rows may be stale until the next
// recompute run.
type Leaderboard struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	TotalScore        int       `json:"total_score" gorm:"default:0"`
	LevelsCompleted   int       `json:"levels_completed" gorm:"default:0"`
	MultiplayerRating int       `json:"multiplayer_rating" gorm:"default:1000"`
	LastUpdated       time.Time `json:"last_updated" gorm:"autoUpdateTime"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
