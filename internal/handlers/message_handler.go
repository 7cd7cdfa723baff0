package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/xiabytes/chatX/internal/service"
)

type MessageHandler struct {
	messages *service.MessageService
	validate *validator.Validate
}

func NewMessageHandler(messages *service.MessageService, validate *validator.Validate) *MessageHandler {
	return &MessageHandler{messages: messages, validate: validate}
}

// Send appends a message to a conversation.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	type Req struct {
		ConversationID string `json:"conversation_id" validate:"required"`
		Content        string `json:"content"`
		Type           string `json:"type"`
		MediaURL       string `json:"media_url" validate:"omitempty,url"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	id, err := h.messages.Append(c.Context(), req.ConversationID, currentUser(c), req.Content, req.Type, req.MediaURL)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message_id": id})
}

// List returns up to limit messages of a conversation, oldest first.
func (h *MessageHandler) List(c *fiber.Ctx) error {
	conversationID := c.Params("conversation_id")
	if conversationID == "" {
		return badRequest(c, "conversation_id required")
	}
	limit := c.QueryInt("limit", 0)

	msgs, err := h.messages.List(c.Context(), conversationID, int64(limit))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}
