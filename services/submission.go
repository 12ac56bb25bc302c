package services

import (
	"log"
	"strings"
	"time"

	"codequest/models"

	"gorm.io/gorm"
)

type SubmissionService struct {
	DB *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{DB: db}
}

// Record persists a code submission outcome. Like achievement checking it is a
// best-effort side channel of the real-time flow: failures are logged, never
// surfaced, and anonymous submissions are skipped.
func (s *SubmissionService) Record(userID, challengeID uint, code string, result Result, elapsed time.Duration) {
	if userID == 0 {
		return
	}

	status := models.SubmissionError
	if result.Passed {
		status = models.SubmissionSuccess
	}

	submission := models.CodeSubmission{
		UserID:        userID,
		ChallengeID:   challengeID,
		Code:          code,
		Language:      "python",
		Status:        status,
		Output:        result.Output,
		ErrorMessage:  strings.Join(result.Errors, "; "),
		ExecutionTime: elapsed.Seconds(),
	}
	if err := s.DB.Create(&submission).Error; err != nil {
		log.Printf("Error recording submission for user %d: %v", userID, err)
	}
}
