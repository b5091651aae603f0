package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/brauliobolano/LinkedInClone/dto"
	"github.com/brauliobolano/LinkedInClone/internal/services"
)

const SessionCookie = "session"

type TokenParser interface {
	ParseToken(token string) (*services.Identity, error)
}

// JWTIdentity resolves the caller from an Authorization bearer token or the
// session cookie and stores it in Locals. Requests without a token pass
// through anonymously. A bad bearer token is rejected; a bad cookie is
// ignored so a stale session still sees the public page.
func JWTIdentity(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if auth != "" && strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			id, err := parser.ParseToken(strings.TrimSpace(auth[7:]))
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid token"})
			}
			setIdentity(c, id)
			return c.Next()
		}

		if cookie := c.Cookies(SessionCookie); cookie != "" {
			if id, err := parser.ParseToken(cookie); err == nil {
				setIdentity(c, id)
			}
		}
		return c.Next()
	}
}

func setIdentity(c *fiber.Ctx, id *services.Identity) {
	c.Locals("identity", id)
	c.Locals("user_id", id.UserID)
}
