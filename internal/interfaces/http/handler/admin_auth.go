package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
)

// AdminAuthHandler handles back-office authentication. It mirrors
// AuthHandler with its own cookies so both sessions can coexist in one browser.
type AdminAuthHandler struct {
	BaseHandler
	authService *identity.AdminAuthService
	cookies     tokenCookies
}

// NewAdminAuthHandler creates a new AdminAuthHandler
func NewAdminAuthHandler(authService *identity.AdminAuthService, cookieCfg config.CookieConfig) *AdminAuthHandler {
	return &AdminAuthHandler{
		authService: authService,
		cookies:     newTokenCookies(cookieCfg, middleware.AdminAccessTokenCookie, middleware.AdminRefreshTokenCookie),
	}
}

// Login godoc
// @ID           loginAdmin
// @Summary      Admin login
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginInput true "Credentials"
// @Success      200 {object} APIResponse[identity.AdminAuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /admin/auth/login [post]
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req identity.LoginInput
	if !h.BindJSON(c, &req) {
		return
	}
	req.IP = c.ClientIP()

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.cookies.set(c, result.Tokens)
	h.Success(c, result)
}

// Refresh godoc
// @ID           refreshAdminToken
// @Summary      Rotate the admin refresh token
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshInput false "Refresh token"
// @Success      200 {object} APIResponse[identity.AdminAuthResult]
// @Failure      401 {object} ErrorResponse
// @Router       /admin/auth/refresh [post]
func (h *AdminAuthHandler) Refresh(c *gin.Context) {
	var req identity.RefreshInput
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	token := h.cookies.refreshToken(c, req.RefreshToken)
	if token == "" {
		h.Error(c, shared.CodeUnauthorized, "Refresh token is required")
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		h.cookies.clear(c)
		h.HandleError(c, err)
		return
	}

	h.cookies.set(c, result.Tokens)
	h.Success(c, result)
}

// Logout godoc
// @ID           logoutAdmin
// @Summary      Admin logout
// @Tags         admin-auth
// @Accept       json
// @Param        request body identity.RefreshInput false "Refresh token to revoke"
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/auth/logout [post]
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, shared.CodeUnauthorized, "Authentication required")
		return
	}
	var req identity.RefreshInput
	if !h.BindOptionalJSON(c, &req) {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims, h.cookies.refreshToken(c, req.RefreshToken)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.cookies.clear(c)
	h.NoContent(c)
}

// Me godoc
// @ID           getAdminProfile
// @Summary      Current admin
// @Tags         admin-auth
// @Produce      json
// @Success      200 {object} APIResponse[identity.AdminResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/auth/me [get]
func (h *AdminAuthHandler) Me(c *gin.Context) {
	adminID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	admin, err := h.authService.Me(c.Request.Context(), adminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, admin)
}
