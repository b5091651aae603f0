package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brauliobolano/LinkedInClone/internal/controllers"
	"github.com/brauliobolano/LinkedInClone/internal/middleware"
)

// CommentRoutes
//
//	GET  /posts/:post_id/comments   newest-first
//	POST /posts/:post_id/comments   {"text": "..."}
func CommentRoutes(app *fiber.App, h *controllers.PostHandler) {
	app.Get("/posts/:post_id/comments", h.ListComments)
	app.Post("/posts/:post_id/comments", middleware.RequireAuth(), h.CreateComment)
}
