package models

import (
	"time"
)

// GameProgress is an immutable record of one attempt at a level. Rows are
// append-only: there is no update or delete path, and history is preserved
// across repeated attempts at the same level. CodeSolution holds the encrypted
// solution payload (base64 ciphertext wrapping {code, timestamp} JSON).
type GameProgress struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index:idx_user_level"`
	Level        int       `json:"level" gorm:"not null;index:idx_user_level"`
	Score        int       `json:"score" gorm:"default:0"`
	CodeSolution string    `json:"-" gorm:"type:text"`
	CompletedAt  time.Time `json:"completed_at" gorm:"autoCreateTime"`
	TimeTaken    int       `json:"time_taken"` // seconds
	Attempts     int       `json:"attempts" gorm:"default:1"`
}

// TableName keeps the table singular; "progress" has no useful plural.
func (GameProgress) TableName() string {
	return "game_progress"
}
