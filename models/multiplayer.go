package models

import (
	"time"
)

// Match lifecycle states.
const (
	MatchWaiting   = "waiting"
	MatchActive    = "active"
	MatchCompleted = "completed"
	MatchCancelled = "cancelled"
)

// DefaultRating is the Elo rating every player starts from.
const DefaultRating = 1000

// MultiplayerStats is the per-user multiplayer record. TotalMatches is a
// maintained field: it is incremented in the same transaction that bumps the
// win/loss/draw counter, so it always equals wins+losses+draws.
type MultiplayerStats struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Wins         int        `json:"wins" gorm:"default:0"`
	Losses       int        `json:"losses" gorm:"default:0"`
	Draws        int        `json:"draws" gorm:"default:0"`
	TotalMatches int        `json:"total_matches" gorm:"default:0"`
	WinStreak    int        `json:"win_streak" gorm:"default:0"`
	MaxWinStreak int        `json:"max_win_streak" gorm:"default:0"`
	Rating       int        `json:"rating" gorm:"default:1000"`
	LastMatch    *time.Time `json:"last_match,omitempty"`
}

// WinRate returns the win percentage over all recorded matches.
func (s *MultiplayerStats) WinRate() float64 {
	if s.TotalMatches == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.TotalMatches) * 100
}

// MultiplayerMatch records one head-to-head session tied to a real-time room.
type MultiplayerMatch struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	RoomID       string     `json:"room_id" gorm:"size:50;not null;index"`
	Player1ID    uint       `json:"player1_id" gorm:"not null"`
	Player2ID    *uint      `json:"player2_id,omitempty"`
	ChallengeID  *uint      `json:"challenge_id,omitempty"`
	Status       string     `json:"status" gorm:"size:20;default:'waiting'"`
	WinnerID     *uint      `json:"winner_id,omitempty"`
	Player1Score int        `json:"player1_score" gorm:"default:0"`
	Player2Score int        `json:"player2_score" gorm:"default:0"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`

	Player1   *User      `json:"player1,omitempty" gorm:"foreignKey:Player1ID"`
	Player2   *User      `json:"player2,omitempty" gorm:"foreignKey:Player2ID"`
	Winner    *User      `json:"winner,omitempty" gorm:"foreignKey:WinnerID"`
	Challenge *Challenge `json:"challenge,omitempty" gorm:"foreignKey:ChallengeID"`
}
