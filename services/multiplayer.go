package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"codequest/models"

	"gorm.io/gorm"
)

const eloKFactor = 32.0

type MultiplayerService struct {
	DB           *gorm.DB
	Achievements *AchievementService
}

func NewMultiplayerService(db *gorm.DB, achievements *AchievementService) *MultiplayerService {
	return &MultiplayerService{DB: db, Achievements: achievements}
}

// EnsureStats returns the user's multiplayer record, creating the default row
// (rating 1000) on first use.
func (s *MultiplayerService) EnsureStats(tx *gorm.DB, userID uint) (*models.MultiplayerStats, error) {
	var stats models.MultiplayerStats
	err := tx.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.MultiplayerStats{UserID: userID, Rating: models.DefaultRating}
		if err := tx.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// CreateMatch opens a waiting match bound to a real-time room.
func (s *MultiplayerService) CreateMatch(roomID string, player1 uint, challengeID *uint) (*models.MultiplayerMatch, error) {
	match := models.MultiplayerMatch{
		RoomID:      roomID,
		Player1ID:   player1,
		ChallengeID: challengeID,
		Status:      models.MatchWaiting,
	}
	if err := s.DB.Create(&match).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// ActivateMatch joins player2 into the room's waiting match. It no-ops when
// the room has no waiting match (casual rooms never record one).
func (s *MultiplayerService) ActivateMatch(roomID string, player2 uint) error {
	var match models.MultiplayerMatch
	err := s.DB.Where("room_id = ? AND status = ?", roomID, models.MatchWaiting).
		Order("created_at DESC").
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if match.Player1ID == player2 {
		return nil
	}

	now := time.Now()
	match.Player2ID = &player2
	match.Status = models.MatchActive
	match.StartTime = &now
	return s.DB.Save(&match).Error
}

// CancelMatch cancels the room's open match, if any. Called when a room
// empties before a result was recorded.
func (s *MultiplayerService) CancelMatch(roomID string) error {
	return s.DB.Model(&models.MultiplayerMatch{}).
		Where("room_id = ? AND status IN ?", roomID, []string{models.MatchWaiting, models.MatchActive}).
		Update("status", models.MatchCancelled).Error
}

// CompleteMatch finalizes the room's active match with winnerID (nil = draw)
// and updates both players' stats in the same transaction: win/loss/draw
// counters, streaks, Elo ratings and the maintained total_matches field.
// Rooms without an active match (casual rooms) are a no-op.
func (s *MultiplayerService) CompleteMatch(roomID string, winnerID *uint, winnerScore, loserScore int) error {
	var winnerStats *models.MultiplayerStats

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var match models.MultiplayerMatch
		if err := tx.Where("room_id = ? AND status = ?", roomID, models.MatchActive).
			Order("created_at DESC").
			First(&match).Error; err != nil {
			return err
		}
		if match.Player2ID == nil {
			return fmt.Errorf("match %d has no second player", match.ID)
		}

		p1Score, p2Score := winnerScore, loserScore
		if winnerID == nil {
			p2Score = winnerScore
		} else if *winnerID == *match.Player2ID {
			p1Score, p2Score = loserScore, winnerScore
		}

		now := time.Now()
		match.Status = models.MatchCompleted
		match.WinnerID = winnerID
		match.Player1Score = p1Score
		match.Player2Score = p2Score
		match.EndTime = &now
		if err := tx.Save(&match).Error; err != nil {
			return err
		}

		p1, err := s.EnsureStats(tx, match.Player1ID)
		if err != nil {
			return err
		}
		p2, err := s.EnsureStats(tx, *match.Player2ID)
		if err != nil {
			return err
		}

		switch {
		case winnerID == nil:
			applyResult(p1, p2, 0.5)
		case *winnerID == match.Player1ID:
			applyResult(p1, p2, 1)
			winnerStats = p1
		case *winnerID == *match.Player2ID:
			applyResult(p2, p1, 1)
			winnerStats = p2
		default:
			return fmt.Errorf("winner %d is not part of match %d", *winnerID, match.ID)
		}
		p1.LastMatch, p2.LastMatch = &now, &now

		if err := tx.Save(p1).Error; err != nil {
			return err
		}
		return tx.Save(p2).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if winnerStats != nil && winnerStats.Wins >= 10 {
		s.Achievements.Award(winnerStats.UserID, models.CriteriaWin10Matches)
	}
	return nil
}

// applyResult updates counters and ratings for one outcome. With score 1, a is
// the winner and b the loser; with 0.5 the match was a draw.
func applyResult(a, b *models.MultiplayerStats, scoreA float64) {
	deltaA := eloDelta(a.Rating, b.Rating, scoreA)
	a.Rating += deltaA
	b.Rating -= deltaA

	a.TotalMatches++
	b.TotalMatches++

	if scoreA == 0.5 {
		a.Draws++
		b.Draws++
		a.WinStreak, b.WinStreak = 0, 0
		return
	}

	a.Wins++
	a.WinStreak++
	if a.WinStreak > a.MaxWinStreak {
		a.MaxWinStreak = a.WinStreak
	}
	b.Losses++
	b.WinStreak = 0
}

// eloDelta is the standard Elo update for player A scoring scoreA against B.
func eloDelta(ratingA, ratingB int, scoreA float64) int {
	expected := 1.0 / (1.0 + math.Pow(10, float64(ratingB-ratingA)/400.0))
	return int(math.Round(eloKFactor * (scoreA - expected)))
}
