package models

import (
	"time"
)

// Criteria keys for the seeded achievements. The key is the stable lookup
// handle: achievements must be seeded before they can be unlocked, and the
// pipeline silently no-ops on a key with no definition.
const (
	CriteriaCompleteLevel1  = "complete_level_1"
	CriteriaFivePython      = "complete_5_python_challenges"
	CriteriaScore1000       = "score_1000_points"
	CriteriaWin10Matches    = "win_10_matches"
	CriteriaFastCompletion  = "fast_challenge_completion"
	CriteriaPerfectScoreRun = "perfect_scores_streak"
)

// Achievement is a named unlockable reward tied to a criteria key.
type Achievement struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:100;not null"`
	Description string `json:"description" gorm:"type:text"`
	Icon        string `json:"icon" gorm:"size:100"`
	Points      int    `json:"points" gorm:"default:10"`
	Criteria    string `json:"criteria" gorm:"size:100;index"`
	Category    string `json:"category" gorm:"size:50"` // learning, multiplayer, speed, accuracy
}

// UserAchievement is the unlock row. The composite unique index makes a second
// award attempt fail at the constraint instead of duplicating the unlock.
type UserAchievement struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	AchievementID uint      `json:"achievement_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	UnlockedAt    time.Time `json:"unlocked_at" gorm:"autoCreateTime"`
}
