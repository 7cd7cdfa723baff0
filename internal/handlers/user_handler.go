package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/xiabytes/chatX/internal/service"
)

type UserHandler struct {
	users    *service.UserService
	validate *validator.Validate
}

func NewUserHandler(users *service.UserService, validate *validator.Validate) *UserHandler {
	return &UserHandler{users: users, validate: validate}
}

// CreateUser registers the authenticated identity in the directory, called by
// the client on first sign-in.
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	type Req struct {
		Email     string `json:"email" validate:"required,email"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
		CreatedAt int64  `json:"created_at"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	createdAt := time.Now().UTC()
	if req.CreatedAt > 0 {
		createdAt = time.UnixMilli(req.CreatedAt).UTC()
	}

	id, err := h.users.Create(c.Context(), currentUser(c), req.Email, req.Name, req.AvatarURL, createdAt)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user_id": id})
}

// Me returns the caller's directory record, or null when they have not been
// registered yet. Absence is a normal answer here, not an error.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	u, err := h.users.Read(c.Context(), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": u})
}

func (h *UserHandler) Rename(c *fiber.Ctx) error {
	type Req struct {
		Name string `json:"name" validate:"required"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	u, err := h.users.Rename(c.Context(), currentUser(c), req.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": u})
}

func (h *UserHandler) UpdateAvatar(c *fiber.Ctx) error {
	type Req struct {
		AvatarURL string `json:"avatar_url" validate:"required,url"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	u, err := h.users.UpdateAvatar(c.Context(), currentUser(c), req.AvatarURL)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": u})
}

// Search finds other users by name or email substring.
func (h *UserHandler) Search(c *fiber.Ctx) error {
	users, err := h.users.Search(c.Context(), c.Query("term"), currentUser(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}
