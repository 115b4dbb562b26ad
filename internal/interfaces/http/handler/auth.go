package handler

import (
	appauth "github.com/brewline/storefront/internal/application/auth"
	"github.com/brewline/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// LoginRequest is the admin login body
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest is the body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally names the refresh token to revoke with the access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// MeResponse reports the current admin session
type MeResponse struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	Username        string `json:"username"`
}

// AuthHandler handles admin authentication
type AuthHandler struct {
	BaseHandler
	auth *appauth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *appauth.Service) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary      Admin login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=auth.TokenPair}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pair)
}

// RefreshToken godoc
// @Summary      Refresh tokens
// @Description  Exchanges a refresh token for a new pair. The used refresh token is revoked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=auth.TokenPair}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pair)
}

// Logout godoc
// @Summary      Admin logout
// @Tags         auth
// @Accept       json
// @Security     BearerAuth
// @Param        request body LogoutRequest false "Refresh token to revoke"
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.HandleError(c, appauth.ErrInvalidToken)
		return
	}
	var req LogoutRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me godoc
// @Summary      Current admin
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=MeResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	username := middleware.GetJWTUsername(c)
	h.Success(c, MeResponse{IsAuthenticated: username != "", Username: username})
}
