package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/brauliobolano/LinkedInClone/dto"
	"github.com/brauliobolano/LinkedInClone/internal/middleware"
	"github.com/brauliobolano/LinkedInClone/internal/services"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterReq) (*dto.TokenResp, error)
	Login(ctx context.Context, req dto.LoginReq) (*dto.TokenResp, error)
}

type AuthHandler struct {
	Auth         AuthService
	SecureCookie bool
	Timeout      time.Duration
}

// Register godoc
// @Summary      Register a local account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterReq  true  "Account"
// @Success      201   {object}  dto.TokenResp
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	tok, err := h.Auth.Register(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	h.setSession(c, tok)
	return c.Status(fiber.StatusCreated).JSON(tok)
}

// Login godoc
// @Summary      Log in
// @Description  Returns a bearer token and sets it as the session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginReq  true  "Credentials"
// @Success      200   {object}  dto.TokenResp
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	tok, err := h.Auth.Login(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	h.setSession(c, tok)
	return c.JSON(tok)
}

// Me godoc
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserRefResp
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id := middleware.IdentityFrom(c)
	if id == nil {
		return respondError(c, services.ErrUnauthorized)
	}
	return c.JSON(dto.UserRefResp{
		UserID:    id.UserID,
		UserImage: id.UserImage,
		FirstName: id.FirstName,
		LastName:  id.LastName,
	})
}

func (h *AuthHandler) setSession(c *fiber.Ctx, tok *dto.TokenResp) {
	expires, err := time.Parse(time.RFC3339, tok.ExpiresAt)
	if err != nil {
		expires = time.Now().Add(24 * time.Hour)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok.AccessToken,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
