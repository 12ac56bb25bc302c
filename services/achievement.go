package services

import (
	"errors"
	"log"

	"codequest/models"

	"gorm.io/gorm"
)

// Notifier pushes a real-time event to a user's private channel. The hub
// implements it; a nil Notifier just drops notifications.
type Notifier interface {
	NotifyUser(userID uint, event string, payload interface{})
}

type AchievementService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db}
}

// CheckAchievements evaluates the unlock rules against the user's cumulative
// history. It is a best-effort side channel of the save operation: every
// failure is logged and swallowed, never returned.
func (s *AchievementService) CheckAchievements(userID uint) {
	var progressCount int64
	if err := s.DB.Model(&models.GameProgress{}).
		Where("user_id = ?", userID).
		Count(&progressCount).Error; err != nil {
		log.Printf("Error checking achievements for user %d: %v", userID, err)
		return
	}

	var totalScore int64
	if err := s.DB.Model(&models.GameProgress{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(score), 0)").
		Scan(&totalScore).Error; err != nil {
		log.Printf("Error summing score for user %d: %v", userID, err)
		return
	}

	// Progress links to challenges by level, not by foreign key.
	var pythonCount int64
	if err := s.DB.Model(&models.GameProgress{}).
		Joins("JOIN challenges ON challenges.level = game_progress.level").
		Where("game_progress.user_id = ? AND challenges.category = ?", userID, "python").
		Count(&pythonCount).Error; err != nil {
		log.Printf("Error counting python challenges for user %d: %v", userID, err)
		return
	}

	if progressCount >= 1 {
		s.Award(userID, models.CriteriaCompleteLevel1)
	}
	if pythonCount >= 5 {
		s.Award(userID, models.CriteriaFivePython)
	}
	if totalScore >= 1000 {
		s.Award(userID, models.CriteriaScore1000)
	}
}

// Award unlocks the achievement identified by criteria for the user. It
// no-ops when the definition is missing or the user already holds the unlock,
// and rolls back without raising on insert failure.
func (s *AchievementService) Award(userID uint, criteria string) {
	var achievement models.Achievement
	err := s.DB.Where("criteria = ?", criteria).First(&achievement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return // achievement not seeded
	}
	if err != nil {
		log.Printf("Error looking up achievement %q: %v", criteria, err)
		return
	}

	unlocked := false
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.UserAchievement
		err := tx.Where("user_id = ? AND achievement_id = ?", userID, achievement.ID).
			First(&existing).Error
		if err == nil {
			return nil // already unlocked
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&models.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
		}).Error; err != nil {
			return err
		}
		unlocked = true
		return nil
	})
	if err != nil {
		log.Printf("Error awarding achievement %q to user %d: %v", criteria, userID, err)
		return
	}

	if unlocked && s.Notifier != nil {
		s.Notifier.NotifyUser(userID, "achievement_unlocked", map[string]interface{}{
			"userId":      userID,
			"achievement": achievement,
		})
	}
}
