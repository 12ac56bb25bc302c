package handlers

import (
	"codequest/middleware"
	"codequest/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, challengeService *services.ChallengeService, lessonService *services.LessonService, progressService *services.ProgressService) {
	secured := app.Group("/", middleware.RequireUser())

	secured.Get("/dashboard", progressService.Dashboard)
	secured.Get("/game/:level", challengeService.GamePage)
	secured.Get("/multiplayer", challengeService.MultiplayerPage)
	secured.Get("/lessons/:topic", lessonService.GetLesson)
}
