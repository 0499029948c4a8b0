package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/pasetolabs/paseto-api/internal/middleware"
	"github.com/pasetolabs/paseto-api/internal/paseto"
	"github.com/pasetolabs/paseto-api/internal/services"
	"github.com/pasetolabs/paseto-api/pkg/response"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(db *gorm.DB, tokens *paseto.Service) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, tokens),
	}
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.ServerError(c, "login failed")
		return
	}

	response.Success(c, "user logged in successfully", result)
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Register(&req, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
			response.Conflict(c, err.Error())
		default:
			response.ServerError(c, "registration failed")
		}
		return
	}

	response.Created(c, "user registered successfully", result)
}

// Refresh exchanges a refresh token for a new token pair
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.DeviceInfo == "" {
		req.DeviceInfo = c.Request.UserAgent()
	}
	if req.IPAddress == "" {
		req.IPAddress = c.ClientIP()
	}

	result, err := h.authService.Refresh(&req)
	if err != nil {
		// Rotation failures are indistinguishable to the caller. Reuse
		// detection in particular must not look different from an ordinary
		// invalid token.
		switch {
		case errors.Is(err, services.ErrInvalidRefreshToken),
			errors.Is(err, services.ErrSessionNotFound),
			errors.Is(err, services.ErrSessionInactive),
			errors.Is(err, services.ErrTokenReuseDetected):
			response.Unauthorized(c, "invalid or expired refresh token")
		default:
			response.ServerError(c, "token refresh failed")
		}
		return
	}

	response.Success(c, "token refreshed successfully", result)
}

// Logout revokes the presented refresh token. It always reports success.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req services.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.authService.Logout(req.RefreshToken)

	response.Success(c, "logout successful", nil)
}

// LogoutAll revokes every active session of the current user
// POST /api/auth/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	if err := h.authService.RevokeAllUserSessions(middleware.GetUserID(c)); err != nil {
		response.ServerError(c, "failed to revoke sessions")
		return
	}

	response.Success(c, "all sessions revoked", nil)
}

// RevokeToken revokes one refresh session by its token ID
// POST /api/auth/revoke/:tokenId
func (h *AuthHandler) RevokeToken(c *gin.Context) {
	if err := h.authService.RevokeSession(c.Param("tokenId")); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			response.NotFound(c, "refresh token not found")
			return
		}
		response.ServerError(c, "failed to revoke token")
		return
	}

	response.Success(c, "token revoked successfully", nil)
}

// ListSessions returns the current user's active refresh sessions
// GET /api/auth/sessions
func (h *AuthHandler) ListSessions(c *gin.Context) {
	sessions, err := h.authService.ListUserSessions(middleware.GetUserID(c))
	if err != nil {
		response.ServerError(c, "failed to list sessions")
		return
	}

	response.Success(c, "active sessions", sessions)
}

// GetCurrentUser returns the current logged-in user
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	response.Success(c, "current user", user)
}
