package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brauliobolano/LinkedInClone/internal/services"
)

// IdentityFrom returns the caller set by JWTIdentity, or nil.
func IdentityFrom(c *fiber.Ctx) *services.Identity {
	id, _ := c.Locals("identity").(*services.Identity)
	return id
}

func UIDFromLocals(c *fiber.Ctx) (string, error) {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return "", fiber.ErrUnauthorized
	}
	return uid, nil
}
