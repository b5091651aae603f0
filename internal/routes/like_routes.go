package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brauliobolano/LinkedInClone/internal/controllers"
	"github.com/brauliobolano/LinkedInClone/internal/middleware"
)

func LikeRoutes(app *fiber.App, h *controllers.PostHandler) {
	app.Post("/posts/:post_id/like", middleware.RequireAuth(), h.Like)
	app.Post("/posts/:post_id/unlike", middleware.RequireAuth(), h.Unlike)
}
