package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brauliobolano/LinkedInClone/dto"
)

// RequireAuth rejects requests without an identity in Locals.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFrom(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
		}
		return c.Next()
	}
}
