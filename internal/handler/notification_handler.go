package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ham-backend/internal/domain"
	"ham-backend/internal/middleware"
	"ham-backend/internal/pkg/logger"
	"ham-backend/internal/pkg/realtime"
	"ham-backend/internal/service/notification"
)

const streamHeartbeat = 25 * time.Second

// Subscriber hands out live event channels for the SSE stream.
type Subscriber interface {
	Subscribe(userID string) (<-chan realtime.Event, func())
}

type NotificationHandler struct {
	notifService notification.Service
	events       Subscriber
}

func NewNotificationHandler(notifService notification.Service, events Subscriber) *NotificationHandler {
	return &NotificationHandler{notifService: notifService, events: events}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	notifications, err := h.notifService.FindAll(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(notifications)
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	count, err := h.notifService.GetUnreadCount(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"unreadCount": count,
	})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid notification ID")
	}

	notif, err := h.notifService.MarkAsRead(c.Context(), id, userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(notif)
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	if err := h.notifService.MarkAllAsRead(c.Context(), userID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) GetSettings(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	settings, err := h.notifService.GetSettings(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(settings)
}

func (h *NotificationHandler) UpdateSettings(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var input domain.NotificationSettingsInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return middleware.BadRequest("Invalid request body")
		}
	}

	settings, err := h.notifService.UpdateSettings(c.Context(), userID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(settings)
}

// Create is mounted on the internal API for other backend flows.
func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateNotificationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	notif, err := h.notifService.Create(c.Context(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(notif)
}

// Stream pushes the caller's new notifications as server-sent events until
// the client goes away.
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		events, unsubscribe := h.events.Subscribe(userID)
		defer unsubscribe()

		ticker := time.NewTicker(streamHeartbeat)
		defer ticker.Stop()

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, ev); err != nil {
					logger.GetLogger().Warn().Err(err).Str("user_id", userID).Msg("drop stream event")
					continue
				}
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}

			if err := w.Flush(); err != nil {
				return
			}
		}
	})

	return nil
}

func writeEvent(w *bufio.Writer, ev realtime.Event) error {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
	return err
}
