package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/xiabytes/chatX/internal/handlers"
	"github.com/xiabytes/chatX/internal/middleware"
	"github.com/xiabytes/chatX/internal/ws"
	"github.com/xiabytes/chatX/pkg/metrics"
)

type Deps struct {
	Users         *handlers.UserHandler
	Conversations *handlers.ConversationHandler
	Messages      *handlers.MessageHandler
	Media         *handlers.MediaHandler
	Hub           *ws.Hub
	JWT           fiber.Handler
	Log           *zap.SugaredLogger
}

func Register(app *fiber.App, d Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api/v1")
	api.Use(d.JWT)

	users := api.Group("/users")
	users.Post("/", d.Users.CreateUser)
	users.Get("/me", d.Users.Me)
	users.Patch("/name", d.Users.Rename)
	users.Patch("/avatar", d.Users.UpdateAvatar)
	users.Get("/search", d.Users.Search)

	convs := api.Group("/conversations")
	convs.Post("/", d.Conversations.GetOrCreate)
	convs.Get("/", d.Conversations.List)
	convs.Delete("/:conversation_id", d.Conversations.Delete)

	msgs := api.Group("/messages")
	msgs.Post("/", d.Messages.Send)
	msgs.Get("/:conversation_id", d.Messages.List)

	if d.Media != nil {
		media := api.Group("/media")
		media.Post("/upload-url", d.Media.CreateUploadURL)
		media.Get("/url", d.Media.ResolveURL)
		media.Post("/upload", d.Media.Upload)
	}

	// Reactive push channel. The token rides the query string since browsers
	// cannot set headers on websocket upgrades.
	app.Get("/ws", d.JWT, websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.LocalsUserKey).(string)
		client := ws.NewClient(userID, conn)
		d.Hub.AddClient(userID, client)
		defer func() {
			d.Hub.RemoveClient(userID, client)
			client.Close()
			_ = conn.Close()
		}()

		go client.WritePump()

		// Clients only listen; the read loop just detects disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}
