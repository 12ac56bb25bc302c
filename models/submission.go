package models

import (
	"time"
)

// Code submission states.
const (
	SubmissionPending = "pending"
	SubmissionSuccess = "success"
	SubmissionError   = "error"
)

// CodeSubmission records one evaluator run of submitted code. Rows are written
// best-effort from the real-time layer; the archive worker ships them to
// object storage afterwards.
type CodeSubmission struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;index"`
	ChallengeID   uint      `json:"challenge_id" gorm:"not null;index"`
	Code          string    `json:"-" gorm:"type:text;not null"`
	Language      string    `json:"language" gorm:"size:20;default:'python'"`
	Status        string    `json:"status" gorm:"size:20;default:'pending'"`
	Output        string    `json:"output" gorm:"type:text"`
	ErrorMessage  string    `json:"error_message" gorm:"type:text"`
	ExecutionTime float64   `json:"execution_time"` // seconds
	MemoryUsed    float64   `json:"memory_used"`    // MB
	SubmittedAt   time.Time `json:"submitted_at" gorm:"autoCreateTime;index"`
}
