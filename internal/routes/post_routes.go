package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brauliobolano/LinkedInClone/internal/controllers"
	"github.com/brauliobolano/LinkedInClone/internal/middleware"
)

func SetupRoutesPost(app *fiber.App, h *controllers.PostHandler) {
	posts := app.Group("/posts")

	posts.Get("/", h.List)
	posts.Post("/", middleware.RequireAuth(), h.Create)
	posts.Get("/:post_id", h.Get)
	posts.Delete("/:post_id", middleware.RequireAuth(), h.Delete)
}
