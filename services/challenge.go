package services

import (
	"errors"
	"fmt"
	"strconv"

	"codequest/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ChallengeService struct {
	DB *gorm.DB
}

func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{DB: db}
}

// LevelChallenge is the tagged result of a challenge lookup by level: either
// the stored challenge, or an explicit default for levels without one.
type LevelChallenge struct {
	Found     bool
	Challenge *models.Challenge
	Level     int
}

// View renders the variant as the game page's challenge block.
func (lc LevelChallenge) View() fiber.Map {
	if lc.Found {
		return fiber.Map{
			"id":           lc.Challenge.ID,
			"title":        lc.Challenge.Title,
			"description":  lc.Challenge.Description,
			"category":     lc.Challenge.Category,
			"difficulty":   lc.Challenge.Difficulty,
			"points":       lc.Challenge.Points,
			"starter_code": lc.Challenge.StarterCode,
		}
	}
	return fiber.Map{
		"title":       fmt.Sprintf("Level %d", lc.Level),
		"description": "Complete the challenge to proceed!",
		"points":      100,
		"difficulty":  "beginner",
	}
}

// ForLevel looks up the challenge seeded for a level.
func (s *ChallengeService) ForLevel(level int) (LevelChallenge, error) {
	var challenge models.Challenge
	err := s.DB.Where("level = ?", level).First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LevelChallenge{Level: level}, nil
	}
	if err != nil {
		return LevelChallenge{}, err
	}
	return LevelChallenge{Found: true, Challenge: &challenge, Level: level}, nil
}

// GamePage handles GET /game/:level.
func (s *ChallengeService) GamePage(c *fiber.Ctx) error {
	level, err := strconv.Atoi(c.Params("level"))
	if err != nil || level < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid level",
		})
	}

	lc, err := s.ForLevel(level)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load challenge",
		})
	}

	return c.JSON(fiber.Map{
		"level":     level,
		"challenge": lc.View(),
		"theme":     c.Locals("theme"),
	})
}

// MultiplayerPage handles GET /multiplayer: the active challenges offered for
// multiplayer rooms.
func (s *ChallengeService) MultiplayerPage(c *fiber.Ctx) error {
	var challenges []models.Challenge
	if err := s.DB.Where("is_active = ?", true).
		Limit(5).
		Find(&challenges).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load challenges",
		})
	}

	return c.JSON(fiber.Map{
		"theme":      c.Locals("theme"),
		"challenges": challenges,
	})
}
