package services

import (
	"fmt"
	"sync"
	"testing"

	"codequest/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Challenge{},
		&models.GameProgress{},
		&models.MultiplayerStats{},
		&models.MultiplayerMatch{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Leaderboard{},
		&models.CodeSubmission{},
		&models.Lesson{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := models.Seed(db); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username:        username,
		Email:           username + "@example.com",
		PasswordHash:    HashPassword("secret"),
		ThemePreference: models.ThemeCute,
		IsActive:        true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return &user
}

// recordingNotifier captures NotifyUser calls for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notifiedEvent
}

type notifiedEvent struct {
	UserID uint
	Event  string
}

func (n *recordingNotifier) NotifyUser(userID uint, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifiedEvent{UserID: userID, Event: event})
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}
