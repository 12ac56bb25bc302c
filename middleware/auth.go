package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// NewSessionStore builds the cookie-backed session store. Sessions live for a
// week, matching the original deployment's lifetime.
func NewSessionStore() *session.Store {
	return session.New(session.Config{
		Expiration:     7 * 24 * time.Hour,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
}

// UserContext loads the session and exposes identity through Locals so
// handlers read user_id/username/theme the same way regardless of route.
func UserContext(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Next()
		}
		if userID, ok := sess.Get("user_id").(uint); ok {
			c.Locals("user_id", userID)
			if username, ok := sess.Get("username").(string); ok {
				c.Locals("username", username)
			}
			if theme, ok := sess.Get("theme").(string); ok {
				c.Locals("theme", theme)
			}
		}
		return c.Next()
	}
}

// RequireUser rejects requests that have no authenticated session.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}
		return c.Next()
	}
}
