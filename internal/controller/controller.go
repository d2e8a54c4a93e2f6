package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// currentUserId reads the authenticated user's id placed in Locals by the
// JWT middleware. A missing or malformed claim is a 401, never a panic.
func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing user identity")
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid user identity")
	}
	return userId, nil
}
