package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/brauliobolano/LinkedInClone/dto"
	"github.com/brauliobolano/LinkedInClone/internal/middleware"
	"github.com/brauliobolano/LinkedInClone/internal/services"
)

type PostService interface {
	CreatePost(ctx context.Context, caller *services.Identity, text string, image *services.ImageUpload) (*dto.PostResponse, error)
	GetPost(ctx context.Context, postID string) (*dto.PostResponse, error)
	ListAllPosts(ctx context.Context) ([]dto.PostResponse, error)
	Like(ctx context.Context, postID, userID string) (*dto.PostResponse, error)
	Unlike(ctx context.Context, postID, userID string) (*dto.PostResponse, error)
	Comment(ctx context.Context, postID string, caller *services.Identity, text string) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, postID string) ([]dto.CommentResponse, error)
	RemoveAsOwner(ctx context.Context, postID string, caller *services.Identity, claimedUserID string) error
}

type PostHandler struct {
	Posts   PostService
	Timeout time.Duration
	Log     *zap.Logger
}

// List godoc
// @Summary      List all posts
// @Description  Every post newest-first with comments resolved newest-first
// @Tags         posts
// @Produce      json
// @Success      200  {object}  dto.FeedResp
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /posts [get]
func (h *PostHandler) List(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	posts, err := h.Posts.ListAllPosts(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FeedResp{Posts: posts})
}

// Get godoc
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Param        post_id  path      string  true  "Post ID (hex ObjectID)"
// @Success      200      {object}  dto.PostResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.ErrorResponse
// @Router       /posts/{post_id} [get]
func (h *PostHandler) Get(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	post, err := h.Posts.GetPost(ctx, c.Params("post_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// Create godoc
// @Summary      Create a post
// @Description  Multipart form with the post text in postInput and an optional image file.
// @Description  With redirect=/ the response is a 303 back to the feed page.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        postInput  formData  string  true   "Post text"
// @Param        image      formData  file    false  "Image (image/*)"
// @Param        redirect   formData  string  false  "Redirect target, only / is honoured"
// @Success      201        {object}  dto.PostResponse
// @Success      303
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      401        {object}  dto.ErrorResponse
// @Failure      502        {object}  dto.ErrorResponse
// @Failure      500        {object}  dto.ErrorResponse
// @Router       /posts [post]
func (h *PostHandler) Create(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	var image *services.ImageUpload
	if fh, err := c.FormFile("image"); err == nil && fh.Size > 0 {
		f, err := fh.Open()
		if err != nil {
			return badRequest(c, "unreadable image")
		}
		defer f.Close()
		image = &services.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		}
	}

	post, err := h.Posts.CreatePost(ctx, middleware.IdentityFrom(c), c.FormValue("postInput"), image)
	if err != nil {
		return respondError(c, err)
	}

	if c.FormValue("redirect") == "/" {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// Delete godoc
// @Summary      Delete a post
// @Description  Only the author may delete. When the body carries userId it must match the caller.
// @Tags         posts
// @Accept       json
// @Security     BearerAuth
// @Param        post_id  path  string             true   "Post ID (hex ObjectID)"
// @Param        body     body  dto.DeletePostReq  false  "Caller id"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /posts/{post_id} [delete]
func (h *PostHandler) Delete(c *fiber.Ctx) error {
	var body dto.DeletePostReq
	if len(strings.TrimSpace(string(c.Body()))) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid body")
		}
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	if err := h.Posts.RemoveAsOwner(ctx, c.Params("post_id"), middleware.IdentityFrom(c), body.UserID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
