package handler

import (
	"github.com/gin-gonic/gin"
	siteapp "github.com/shopfront/backend/internal/application/site"
)

// SettingsHandler handles storefront settings
type SettingsHandler struct {
	BaseHandler
	settingsService *siteapp.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *siteapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Public godoc
// @ID           getPublicSettings
// @Summary      Storefront settings
// @Description  The subset of settings the storefront needs
// @Tags         settings
// @Produce      json
// @Success      200 {object} APIResponse[site.Public]
// @Router       /settings [get]
func (h *SettingsHandler) Public(c *gin.Context) {
	settings, err := h.settingsService.Public(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, settings)
}

// Get godoc
// @ID           adminGetSettings
// @Summary      All settings
// @Tags         admin-settings
// @Produce      json
// @Success      200 {object} APIResponse[site.Settings]
// @Security     BearerAuth
// @Router       /admin/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Current(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, settings)
}

// Update godoc
// @ID           adminUpdateSettings
// @Summary      Update settings
// @Description  Omitted fields keep their current value
// @Tags         admin-settings
// @Accept       json
// @Produce      json
// @Param        request body siteapp.UpdateSettingsInput true "Changes"
// @Success      200 {object} APIResponse[site.Settings]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req siteapp.UpdateSettingsInput
	if !h.BindJSON(c, &req) {
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, settings)
}
