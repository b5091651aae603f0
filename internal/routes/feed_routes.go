package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brauliobolano/LinkedInClone/internal/controllers"
)

func SetupFeedPage(app *fiber.App, h *controllers.FeedHandler) {
	app.Get("/", h.Page)
}
