package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brauliobolano/LinkedInClone/dto"
	"github.com/brauliobolano/LinkedInClone/internal/middleware"
)

// ListComments godoc
// @Summary      List comments of a post
// @Tags         comments
// @Produce      json
// @Param        post_id  path      string  true  "Post ID (hex ObjectID)"
// @Success      200      {object}  dto.ListCommentsResp
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /posts/{post_id}/comments [get]
func (h *PostHandler) ListComments(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	comments, err := h.Posts.ListComments(ctx, c.Params("post_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ListCommentsResp{Comments: comments})
}

// CreateComment godoc
// @Summary      Comment on a post
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        post_id  path      string                true  "Post ID (hex ObjectID)"
// @Param        body     body      dto.CreateCommentReq  true  "Comment payload"
// @Success      201      {object}  dto.CommentResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.ErrorResponse
// @Router       /posts/{post_id}/comments [post]
func (h *PostHandler) CreateComment(c *fiber.Ctx) error {
	var req dto.CreateCommentReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	comment, err := h.Posts.Comment(ctx, c.Params("post_id"), middleware.IdentityFrom(c), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
