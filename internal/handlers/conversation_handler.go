package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/xiabytes/chatX/internal/service"
)

type ConversationHandler struct {
	conversations *service.ConversationService
	validate      *validator.Validate
}

func NewConversationHandler(conversations *service.ConversationService, validate *validator.Validate) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, validate: validate}
}

// GetOrCreate opens (or finds) the conversation between the caller and the
// named participant.
func (h *ConversationHandler) GetOrCreate(c *fiber.Ctx) error {
	type Req struct {
		ParticipantUserID string `json:"participant_user_id" validate:"required"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	id, err := h.conversations.GetOrCreate(c.Context(), currentUser(c), req.ParticipantUserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"conversation_id": id})
}

// List returns the caller's chat list with previews.
func (h *ConversationHandler) List(c *fiber.Ctx) error {
	convs, err := h.conversations.ListForUser(c.Context(), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"conversations": convs})
}

// Delete removes a conversation and its message history.
func (h *ConversationHandler) Delete(c *fiber.Ctx) error {
	conversationID := c.Params("conversation_id")
	if conversationID == "" {
		return badRequest(c, "conversation_id required")
	}

	res, err := h.conversations.Delete(c.Context(), currentUser(c), conversationID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}
