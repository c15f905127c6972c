package handler

import "github.com/gofiber/fiber/v2"

// SetupRoutes mounts the public API. authRequired guards user routes and
// internalOnly guards service-to-service routes.
func SetupRoutes(app *fiber.App, h *Handlers, authRequired, internalOnly fiber.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	messages := app.Group("/messages", authRequired)
	messages.Get("/inbox", h.Message.Inbox)
	messages.Get("/sent", h.Message.Sent)
	messages.Get("/unread-count", h.Message.UnreadCount)
	messages.Post("/", h.Message.Create)
	messages.Get("/:id", h.Message.Get)
	messages.Put("/:id/read", h.Message.MarkAsRead)
	messages.Delete("/:id", h.Message.Delete)

	notifications := app.Group("/notifications", authRequired)
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Get("/stream", h.Notification.Stream)
	notifications.Get("/settings", h.Notification.GetSettings)
	notifications.Post("/settings", h.Notification.UpdateSettings)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
	notifications.Put("/:id/read", h.Notification.MarkAsRead)

	internal := app.Group("/internal", internalOnly)
	internal.Post("/notifications", h.Notification.Create)
}
