package handlers

import (
	"codequest/realtime"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SetupRealtimeRoutes mounts the websocket endpoint. Identity is read from the
// pre-established session before the upgrade; it is not re-verified over the
// channel. Sessions are optional here: anonymous clients may connect, they
// just produce no presence events.
func SetupRealtimeRoutes(app *fiber.App, hub *realtime.Hub, store *session.Store) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		var userID uint
		var username string
		if sess, err := store.Get(c); err == nil {
			if uid, ok := sess.Get("user_id").(uint); ok {
				userID = uid
				username, _ = sess.Get("username").(string)
			}
		}
		c.Locals("ws_user_id", userID)
		c.Locals("ws_username", username)
		return c.Next()
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		hub.ServeClient(conn)
	}))
}
