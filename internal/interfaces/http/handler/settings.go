package handler

import (
	appsettings "github.com/brewline/storefront/internal/application/settings"
	"github.com/brewline/storefront/internal/domain/settings"
	"github.com/gin-gonic/gin"
)

// SettingsHandler serves and updates the shop settings
type SettingsHandler struct {
	BaseHandler
	store *appsettings.Store
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store *appsettings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// GetSettings godoc
// @Summary      Get shop settings
// @Description  Public shop configuration: name, theme, images, social links and WhatsApp number
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.Response{data=settings.SiteSettings}
// @Router       /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	h.Success(c, h.store.Get(c.Request.Context()))
}

// UpdateSettings godoc
// @Summary      Replace shop settings
// @Description  Fields missing from the body take their default value
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body settings.SiteSettings true "Settings"
// @Success      200 {object} dto.Response{data=settings.SiteSettings}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req settings.StoredSettings
	if !h.bindJSON(c, &req) {
		return
	}

	updated, warnings, err := h.store.UpdateSettings(c.Request.Context(), settings.Merge(settings.Defaults(), req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithWarnings(c, updated, warnings)
}
