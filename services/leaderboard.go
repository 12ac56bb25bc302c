package services

import (
	"log"
	"time"

	"codequest/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopPlayersLimit is how many rows the leaderboard endpoint returns.
const TopPlayersLimit = 20

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

type leaderboardAgg struct {
	UserID            uint
	TotalScore        int
	LevelsCompleted   int
	MultiplayerRating int
}

// Recompute rebuilds the leaderboard projection wholesale: per user, the
// summed progress score, the progress row count and the current multiplayer
// rating (1000 when absent). The per-user upsert is idempotent, so overlapping
// runs converge on the same rows.
func (s *LeaderboardService) Recompute() error {
	var rows []leaderboardAgg
	if err := s.DB.Raw(`
		SELECT u.id AS user_id,
		       COALESCE(SUM(gp.score), 0) AS total_score,
		       COUNT(gp.id) AS levels_completed,
		       COALESCE(ms.rating, 1000) AS multiplayer_rating
		FROM users u
		LEFT JOIN game_progress gp ON gp.user_id = u.id
		LEFT JOIN multiplayer_stats ms ON ms.user_id = u.id
		GROUP BY u.id, ms.rating
	`).Scan(&rows).Error; err != nil {
		return err
	}

	for _, row := range rows {
		entry := models.Leaderboard{
			UserID:            row.UserID,
			TotalScore:        row.TotalScore,
			LevelsCompleted:   row.LevelsCompleted,
			MultiplayerRating: row.MultiplayerRating,
			LastUpdated:       time.Now(),
		}
		if err := s.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_score", "levels_completed", "multiplayer_rating", "last_updated",
			}),
		}).Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// Top returns the first n leaderboard rows ordered by total score descending.
// Ties fall back to the storage's default row order.
func (s *LeaderboardService) Top(n int) ([]models.Leaderboard, error) {
	var entries []models.Leaderboard
	err := s.DB.Preload("User").
		Order("total_score DESC").
		Limit(n).
		Find(&entries).Error
	return entries, err
}

// GetLeaderboard handles GET /leaderboard.
func (s *LeaderboardService) GetLeaderboard(c *fiber.Ctx) error {
	entries, err := s.Top(TopPlayersLimit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load leaderboard",
		})
	}

	result := make([]fiber.Map, 0, len(entries))
	for _, entry := range entries {
		username := ""
		if entry.User != nil {
			username = entry.User.Username
		}
		result = append(result, fiber.Map{
			"username":           username,
			"total_score":        entry.TotalScore,
			"levels_completed":   entry.LevelsCompleted,
			"multiplayer_rating": entry.MultiplayerRating,
		})
	}
	return c.JSON(result)
}

// StartRecomputeScheduler runs Recompute on a fixed interval.
func (s *LeaderboardService) StartRecomputeScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := s.Recompute(); err != nil {
				log.Printf("[Leaderboard] recompute failed: %v", err)
			}
		}),
	)
}
