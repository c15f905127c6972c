package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ham-backend/internal/domain"
	"ham-backend/internal/middleware"
	"ham-backend/internal/service/message"
)

type MessageHandler struct {
	messageService message.Service
}

func NewMessageHandler(messageService message.Service) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	messages, err := h.messageService.GetInbox(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(messages)
}

func (h *MessageHandler) Sent(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	messages, err := h.messageService.GetSent(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(messages)
}

func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	count, err := h.messageService.GetUnreadCount(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"unreadCount": count,
	})
}

func (h *MessageHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid message ID")
	}

	msg, err := h.messageService.FindOne(c.Context(), id, userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(msg)
}

func (h *MessageHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var input domain.CreateMessageInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	msg, err := h.messageService.Create(c.Context(), userID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *MessageHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid message ID")
	}

	msg, err := h.messageService.MarkAsRead(c.Context(), id, userID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(msg)
}

func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid message ID")
	}

	if err := h.messageService.Delete(c.Context(), id, userID); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Message deleted successfully",
	})
}
