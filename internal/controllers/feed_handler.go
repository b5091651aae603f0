package controllers

import (
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/brauliobolano/LinkedInClone/dto"
	"github.com/brauliobolano/LinkedInClone/internal/middleware"
	"github.com/brauliobolano/LinkedInClone/internal/services"
)

type FeedHandler struct {
	Posts     PostService
	Templates *template.Template
	AppName   string
	Timeout   time.Duration
	Log       *zap.Logger
}

type feedPage struct {
	AppName string
	User    *services.Identity
	Posts   []dto.PostResponse
	Error   string
}

// Page renders the HTML feed: header, composer for signed-in users, posts.
func (h *FeedHandler) Page(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	data := feedPage{AppName: h.AppName, User: middleware.IdentityFrom(c)}
	status := fiber.StatusOK

	posts, err := h.Posts.ListAllPosts(ctx)
	if err != nil {
		status = StatusFor(err)
		data.Error = "The feed could not be loaded. Try again shortly."
		if h.Log != nil {
			h.Log.Error("Failed to load feed page", zap.Error(err))
		}
	}
	data.Posts = posts

	c.Status(status).Type("html", "utf-8")
	return h.Templates.ExecuteTemplate(c.Response().BodyWriter(), "feed.html", data)
}
