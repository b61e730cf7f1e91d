package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles customer authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	cookies     tokenCookies
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identity.AuthService, cookieCfg config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     newTokenCookies(cookieCfg, middleware.AccessTokenCookie, middleware.RefreshTokenCookie),
	}
}

// Register godoc
// @ID           registerCustomer
// @Summary      Register a customer account
// @Description  Creates an account and signs the customer in. Tokens are also set as HttpOnly cookies.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterInput true "Registration data"
// @Success      201 {object} APIResponse[identity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterInput
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.cookies.set(c, result.Tokens)
	h.Created(c, result)
}

// Login godoc
// @ID           loginCustomer
// @Summary      Customer login
// @Description  Authenticates with email and password. Repeated failures lock the account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginInput true "Credentials"
// @Success      200 {object} APIResponse[identity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
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
// @ID           refreshCustomerToken
// @Summary      Rotate the refresh token
// @Description  Accepts the refresh token from the body or the refresh_token cookie. The old token is revoked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshInput false "Refresh token"
// @Success      200 {object} APIResponse[identity.AuthResult]
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
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
// @ID           logoutCustomer
// @Summary      Customer logout
// @Description  Revokes the current access token and refresh token and clears the auth cookies
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshInput false "Refresh token to revoke"
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
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
// @ID           getCustomerProfile
// @Summary      Current customer profile
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// UpdateProfile godoc
// @ID           updateCustomerProfile
// @Summary      Update the customer profile
// @Description  Omitted fields keep their current value
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.UpdateProfileInput true "Profile fields"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req identity.UpdateProfileInput
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// ChangePassword godoc
// @ID           changeCustomerPassword
// @Summary      Change password
// @Description  Changing the password signs out every other session
// @Tags         auth
// @Accept       json
// @Param        request body identity.ChangePasswordInput true "Passwords"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req identity.ChangePasswordInput
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
