package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"codequest/middleware"
	"codequest/models"
	"codequest/services"
	"codequest/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
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

	key, err := utils.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	cipher, err := utils.NewSolutionCipher(key)
	if err != nil {
		t.Fatalf("failed to build cipher: %v", err)
	}

	store := middleware.NewSessionStore()
	achievementService := services.NewAchievementService(db)
	authService := services.NewAuthService(db, store)
	progressService := services.NewProgressService(db, cipher, achievementService)
	challengeService := services.NewChallengeService(db)
	lessonService := services.NewLessonService(db)
	leaderboardService := services.NewLeaderboardService(db)

	app := fiber.New()
	app.Use(middleware.UserContext(store))
	SetupAuthRoutes(app, authService)
	SetupGameRoutes(app, challengeService, lessonService, progressService)
	SetupProgressRoutes(app, progressService, leaderboardService)

	return app, db
}

// client carries the session cookie across requests to one test app.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies []*http.Cookie
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app}
}

func (c *client) do(method, path string, body interface{}) *http.Response {
	c.t.Helper()

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("failed to marshal body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.app.Test(req, -1)
	if err != nil {
		c.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	if set := resp.Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	resp.Body.Close()
}

func register(c *client, username string) {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/register", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
		"theme":    models.ThemeCute,
	})
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register %s: status %d, want 201", username, resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRegisterCreatesUserAndStats(t *testing.T) {
	app, db := setupTestApp(t)
	c := newClient(t, app)

	register(c, "ziggy")

	var user models.User
	if err := db.Where("username = ?", "ziggy").First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.PasswordHash == "secret123" {
		t.Fatal("password stored in plaintext")
	}

	var stats models.MultiplayerStats
	if err := db.Where("user_id = ?", user.ID).First(&stats).Error; err != nil {
		t.Fatalf("stats row not created: %v", err)
	}
	if stats.Rating != models.DefaultRating {
		t.Fatalf("initial rating = %d, want %d", stats.Rating, models.DefaultRating)
	}
}

func TestDuplicateRegisterLeavesStateUnchanged(t *testing.T) {
	app, db := setupTestApp(t)
	c := newClient(t, app)
	register(c, "taken")

	resp := newClient(t, app).do(http.MethodPost, "/register", fiber.Map{
		"username": "taken",
		"email":    "other@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register: status %d, want 400", resp.StatusCode)
	}
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	if body["error"] != "Username or email already exists" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("user count = %d, want 1", count)
	}
}

func TestLoginWithEmailAndBadPassword(t *testing.T) {
	app, _ := setupTestApp(t)
	register(newClient(t, app), "mallory")

	c := newClient(t, app)
	resp := c.do(http.MethodPost, "/login", fiber.Map{
		"username": "mallory@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login by email: status %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = newClient(t, app).do(http.MethodPost, "/login", fiber.Map{
		"username": "mallory",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password: status %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSecuredRoutesRequireSession(t *testing.T) {
	app, _ := setupTestApp(t)
	c := newClient(t, app)

	for _, route := range []struct {
		method, path string
	}{
		{http.MethodGet, "/dashboard"},
		{http.MethodGet, "/user_stats"},
		{http.MethodGet, "/game/1"},
		{http.MethodGet, "/multiplayer"},
		{http.MethodGet, "/lessons/variables"},
		{http.MethodPost, "/save_progress"},
		{http.MethodPost, "/update_theme"},
	} {
		resp := c.do(route.method, route.path, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s: status %d, want 401", route.method, route.path, resp.StatusCode)
		}
		var body map[string]interface{}
		decodeBody(t, resp, &body)
		if body["error"] != "Not authenticated" {
			t.Fatalf("%s %s: unexpected error %v", route.method, route.path, body["error"])
		}
	}
}

func TestUserStatsZeroState(t *testing.T) {
	app, _ := setupTestApp(t)
	c := newClient(t, app)
	register(c, "fresh")

	resp := c.do(http.MethodGet, "/user_stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("user_stats: status %d, want 200", resp.StatusCode)
	}
	var body map[string]interface{}
	decodeBody(t, resp, &body)

	if body["total_score"].(float64) != 0 || body["levels_completed"].(float64) != 0 {
		t.Fatalf("expected zeroed progress, got %v", body)
	}
	if body["multiplayer_rating"].(float64) != float64(models.DefaultRating) {
		t.Fatalf("rating = %v, want %d", body["multiplayer_rating"], models.DefaultRating)
	}
}

func TestSaveProgressUpdatesStats(t *testing.T) {
	app, db := setupTestApp(t)
	c := newClient(t, app)
	register(c, "grinder")

	resp := c.do(http.MethodPost, "/save_progress", fiber.Map{
		"level":         2,
		"score":         150,
		"code_solution": "print('done')",
		"time_taken":    30,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save_progress: status %d, want 200", resp.StatusCode)
	}
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	if body["status"] != "success" || body["message"] != "Progress saved" {
		t.Fatalf("unexpected save response: %v", body)
	}

	resp = c.do(http.MethodGet, "/user_stats", nil)
	var stats map[string]interface{}
	decodeBody(t, resp, &stats)
	if stats["total_score"].(float64) != 150 || stats["levels_completed"].(float64) != 1 {
		t.Fatalf("stats not updated: %v", stats)
	}

	var row models.GameProgress
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("progress row not found: %v", err)
	}
	if row.CodeSolution == "" || row.CodeSolution == "print('done')" {
		t.Fatal("solution not stored encrypted")
	}
}

func TestUpdateThemeRejectsInvalid(t *testing.T) {
	app, db := setupTestApp(t)
	c := newClient(t, app)
	register(c, "stylish")

	resp := c.do(http.MethodPost, "/update_theme", fiber.Map{"theme": "neon"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid theme: status %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	var user models.User
	db.Where("username = ?", "stylish").First(&user)
	if user.ThemePreference != models.ThemeCute {
		t.Fatalf("theme changed despite rejection: %q", user.ThemePreference)
	}

	resp = c.do(http.MethodPost, "/update_theme", fiber.Map{"theme": models.ThemeDeadly})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid theme: status %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	db.Where("username = ?", "stylish").First(&user)
	if user.ThemePreference != models.ThemeDeadly {
		t.Fatalf("theme not persisted: %q", user.ThemePreference)
	}
}

func TestLeaderboardIsPublicAndOrdered(t *testing.T) {
	app, db := setupTestApp(t)

	for i, score := range []int{300, 1200, 500} {
		username := fmt.Sprintf("ranked%d", i)
		register(newClient(t, app), username)

		var user models.User
		db.Where("username = ?", username).First(&user)
		if err := db.Create(&models.GameProgress{UserID: user.ID, Level: 1, Score: score}).Error; err != nil {
			t.Fatalf("failed to create progress: %v", err)
		}
	}
	if err := services.NewLeaderboardService(db).Recompute(); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	// No session on this client: the leaderboard stays public.
	resp := newClient(t, app).do(http.MethodGet, "/leaderboard", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leaderboard: status %d, want 200", resp.StatusCode)
	}
	var entries []map[string]interface{}
	decodeBody(t, resp, &entries)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []float64{1200, 500, 300} {
		if entries[i]["total_score"].(float64) != want {
			t.Fatalf("entry %d: total_score = %v, want %v", i, entries[i]["total_score"], want)
		}
	}
}

func TestGamePageFallsBackForUnseededLevel(t *testing.T) {
	app, _ := setupTestApp(t)
	c := newClient(t, app)
	register(c, "explorer")

	resp := c.do(http.MethodGet, "/game/999", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("game page: status %d, want 200", resp.StatusCode)
	}
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	challenge, ok := body["challenge"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing challenge view: %v", body)
	}
	if challenge["title"] != "Level 999" {
		t.Fatalf("fallback title = %v, want %q", challenge["title"], "Level 999")
	}
	if challenge["points"].(float64) != 100 {
		t.Fatalf("fallback points = %v, want 100", challenge["points"])
	}

	resp = c.do(http.MethodGet, "/game/notanumber", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid level: status %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLessonFallback(t *testing.T) {
	app, _ := setupTestApp(t)
	c := newClient(t, app)
	register(c, "reader")

	resp := c.do(http.MethodGet, "/lessons/definitely-not-a-topic", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lesson: status %d, want 200", resp.StatusCode)
	}
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	lesson, ok := body["lesson"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing lesson view: %v", body)
	}
	if lesson["title"] != "Topic Not Found" {
		t.Fatalf("fallback title = %v", lesson["title"])
	}
}

func TestLogoutEndsSession(t *testing.T) {
	app, _ := setupTestApp(t)
	c := newClient(t, app)
	register(c, "leaver")

	resp := c.do(http.MethodGet, "/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: status %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.do(http.MethodGet, "/dashboard", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dashboard after logout: status %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}
