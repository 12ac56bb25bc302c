package services

import (
	"testing"

	"codequest/models"
)

func TestRecomputeOrdersByTotalScore(t *testing.T) {
	db := setupTestDB(t)
	lows := createTestUser(t, db, "low")
	mid := createTestUser(t, db, "mid")
	high := createTestUser(t, db, "high")

	scores := map[uint]int{lows.ID: 300, mid.ID: 500, high.ID: 1200}
	for userID, score := range scores {
		if err := db.Create(&models.GameProgress{UserID: userID, Level: 1, Score: score}).Error; err != nil {
			t.Fatalf("failed to create progress: %v", err)
		}
	}

	leaderboard := NewLeaderboardService(db)
	if err := leaderboard.Recompute(); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	entries, err := leaderboard.Top(TopPlayersLimit)
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []int{1200, 500, 300} {
		if entries[i].TotalScore != want {
			t.Fatalf("entry %d: total_score = %d, want %d", i, entries[i].TotalScore, want)
		}
	}
}

func TestRecomputeDefaultsRating(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "newbie")

	leaderboard := NewLeaderboardService(db)
	if err := leaderboard.Recompute(); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	var entry models.Leaderboard
	if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
		t.Fatalf("leaderboard row not found: %v", err)
	}
	if entry.MultiplayerRating != models.DefaultRating {
		t.Fatalf("rating = %d, want %d", entry.MultiplayerRating, models.DefaultRating)
	}
	if entry.TotalScore != 0 || entry.LevelsCompleted != 0 {
		t.Fatalf("expected zero stats, got score=%d levels=%d", entry.TotalScore, entry.LevelsCompleted)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "steady")
	if err := db.Create(&models.GameProgress{UserID: user.ID, Level: 1, Score: 250}).Error; err != nil {
		t.Fatalf("failed to create progress: %v", err)
	}

	leaderboard := NewLeaderboardService(db)
	for i := 0; i < 2; i++ {
		if err := leaderboard.Recompute(); err != nil {
			t.Fatalf("Recompute run %d failed: %v", i, err)
		}
	}

	var count int64
	db.Model(&models.Leaderboard{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single row per user, got %d", count)
	}
	var entry models.Leaderboard
	db.Where("user_id = ?", user.ID).First(&entry)
	if entry.TotalScore != 250 {
		t.Fatalf("total_score = %d, want 250", entry.TotalScore)
	}
}
