package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/xiabytes/chatX/pkg/apperrors"
)

// fail maps the error taxonomy onto HTTP statuses and returns the
// human-readable message to the caller.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.CodeNotFound:
		status = fiber.StatusNotFound
	case apperrors.CodeUnauthorized:
		status = fiber.StatusForbidden
	case apperrors.CodeInvalidArgument:
		status = fiber.StatusBadRequest
	}

	msg := "internal error"
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
