package handlers

import (
	"codequest/middleware"
	"codequest/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	app.Post("/register", authService.Register)
	app.Post("/login", authService.Login)
	app.Get("/logout", authService.Logout)

	secured := app.Group("/", middleware.RequireUser())
	secured.Post("/update_theme", authService.UpdateTheme)
}
