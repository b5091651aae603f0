package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brauliobolano/LinkedInClone/dto"
	"github.com/brauliobolano/LinkedInClone/internal/middleware"
)

// Like godoc
// @Summary      Like a post
// @Description  Adds the caller to the post's likes. Liking twice is a no-op.
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        post_id  path      string  true  "Post ID (hex ObjectID)"
// @Success      200      {object}  dto.PostResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /posts/{post_id}/like [post]
func (h *PostHandler) Like(c *fiber.Ctx) error {
	return h.toggleLike(c, true)
}

// Unlike godoc
// @Summary      Unlike a post
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        post_id  path      string  true  "Post ID (hex ObjectID)"
// @Success      200      {object}  dto.PostResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /posts/{post_id}/unlike [post]
func (h *PostHandler) Unlike(c *fiber.Ctx) error {
	return h.toggleLike(c, false)
}

func (h *PostHandler) toggleLike(c *fiber.Ctx, like bool) error {
	uid, err := middleware.UIDFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "missing userId in context"})
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	apply := h.Posts.Unlike
	if like {
		apply = h.Posts.Like
	}
	post, err := apply(ctx, c.Params("post_id"), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}
