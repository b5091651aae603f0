package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brauliobolano/LinkedInClone/internal/controllers"
	"github.com/brauliobolano/LinkedInClone/internal/middleware"
)

// SetupAuth
//
//	curl -X POST http://127.0.0.1:8000/auth/login \
//	  -H "Content-Type: application/json" \
//	  -d '{"email": "ada@example.com", "password": "yourpassword"}'
func SetupAuth(app *fiber.App, h *controllers.AuthHandler) {
	auth := app.Group("/auth")

	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", middleware.RequireAuth(), h.Me)
}
