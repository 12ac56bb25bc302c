package services

import (
	"errors"
	"fmt"
	"time"

	"codequest/models"
	"codequest/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressService struct {
	DB           *gorm.DB
	Cipher       *utils.SolutionCipher
	Achievements *AchievementService
}

func NewProgressService(db *gorm.DB, cipher *utils.SolutionCipher, achievements *AchievementService) *ProgressService {
	return &ProgressService{DB: db, Cipher: cipher, Achievements: achievements}
}

// solutionPayload is what gets encrypted into GameProgress.CodeSolution.
type solutionPayload struct {
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
}

// RecordAttempt encrypts the solution and appends a progress row. The write is
// transactional: a constraint violation leaves no partial row behind. The
// achievement check afterwards is best-effort and cannot fail the save.
func (s *ProgressService) RecordAttempt(userID uint, level, score int, codeSolution string, timeTaken, attempts int) error {
	encrypted, err := s.Cipher.Encrypt(solutionPayload{
		Code:      codeSolution,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encrypt solution: %w", err)
	}

	progress := models.GameProgress{
		UserID:       userID,
		Level:        level,
		Score:        score,
		CodeSolution: encrypted,
		TimeTaken:    timeTaken,
		Attempts:     attempts,
	}
	if err := s.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&progress).Error
	}); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	s.Achievements.CheckAchievements(userID)
	return nil
}

// DecryptSolution recovers the plaintext code stored in a progress row.
func (s *ProgressService) DecryptSolution(progress *models.GameProgress) (string, error) {
	var payload solutionPayload
	if err := s.Cipher.Decrypt(progress.CodeSolution, &payload); err != nil {
		return "", err
	}
	return payload.Code, nil
}

type saveProgressRequest struct {
	Level        int    `json:"level"`
	Score        int    `json:"score"`
	CodeSolution string `json:"code_solution"`
	TimeTaken    int    `json:"time_taken"`
	Attempts     int    `json:"attempts"`
}

// SaveProgress handles POST /save_progress.
func (s *ProgressService) SaveProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	req := saveProgressRequest{Level: 1, Attempts: 1}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := s.RecordAttempt(userID, req.Level, req.Score, req.CodeSolution, req.TimeTaken, req.Attempts); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Progress saved",
	})
}

// Dashboard handles GET /dashboard: the session-gated view model with the
// user's aggregate stats.
func (s *ProgressService) Dashboard(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	totalScore, levelsCompleted, err := s.aggregates(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load stats",
		})
	}

	var highestLevel int
	if err := s.DB.Model(&models.GameProgress{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(level), 1)").
		Scan(&highestLevel).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load stats",
		})
	}

	return c.JSON(fiber.Map{
		"username": c.Locals("username"),
		"theme":    c.Locals("theme"),
		"stats": fiber.Map{
			"total_score":      totalScore,
			"levels_completed": levelsCompleted,
			"highest_level":    highestLevel,
		},
	})
}

// UserStats handles GET /user_stats. A user with no progress rows and no
// multiplayer record gets the zero-state defaults (rating 1000).
func (s *ProgressService) UserStats(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	totalScore, levelsCompleted, err := s.aggregates(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load stats",
		})
	}

	wins, losses, rating := 0, 0, models.DefaultRating
	var stats models.MultiplayerStats
	if err := s.DB.Where("user_id = ?", userID).First(&stats).Error; err == nil {
		wins, losses, rating = stats.Wins, stats.Losses, stats.Rating
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load stats",
		})
	}

	return c.JSON(fiber.Map{
		"total_score":        totalScore,
		"levels_completed":   levelsCompleted,
		"multiplayer_wins":   wins,
		"multiplayer_losses": losses,
		"multiplayer_rating": rating,
	})
}

func (s *ProgressService) aggregates(userID uint) (totalScore int64, levelsCompleted int64, err error) {
	if err = s.DB.Model(&models.GameProgress{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(score), 0)").
		Scan(&totalScore).Error; err != nil {
		return 0, 0, err
	}
	if err = s.DB.Model(&models.GameProgress{}).
		Where("user_id = ?", userID).
		Count(&levelsCompleted).Error; err != nil {
		return 0, 0, err
	}
	return totalScore, levelsCompleted, nil
}
