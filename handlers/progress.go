package handlers

import (
	"codequest/middleware"
	"codequest/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressRoutes(app *fiber.App, progressService *services.ProgressService, leaderboardService *services.LeaderboardService) {
	// leaderboard is public; stats and saves are session-gated
	app.Get("/leaderboard", leaderboardService.GetLeaderboard)

	secured := app.Group("/", middleware.RequireUser())
	secured.Post("/save_progress", progressService.SaveProgress)
	secured.Get("/user_stats", progressService.UserStats)
}
