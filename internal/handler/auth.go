package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/service"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// AuthHandler serves /api/auth.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type validateReq struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Register(ctx, req)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusCreated, res)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusOK, res)
}

// Refresh rotates a refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusOK, res)
}

// Validate checks an access token passed in the body or ?token.
func (h *AuthHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		token = strings.TrimSpace(c.QueryParam("token"))
	}
	if token == "" {
		return utils.JSONError(c, http.StatusBadRequest, "Token is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Authenticate(ctx, token)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"valid": true, "user": u.Summary()})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		return utils.JSONError(c, http.StatusBadRequest, "Refresh token is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, req.RefreshToken); err != nil {
		return respond(c, err)
	}
	return utils.JSONMessage(c, http.StatusOK, "Logged out")
}

// LogoutAll signs the caller out of every device.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.LogoutAll(ctx, actor(c).ID); err != nil {
		return respond(c, err)
	}
	return utils.JSONMessage(c, http.StatusOK, "Logged out of all sessions")
}
