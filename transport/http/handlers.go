package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrostack/agrauth/core"
	"github.com/agrostack/agrauth/service"
)

const refreshCookieName = "refreshToken"

// AuthHandlers contains HTTP handlers for the auth endpoints.
type AuthHandlers struct {
	otpService  *service.OTPService
	authService *service.AuthService
	production  bool
	refreshTTL  int // cookie max age, seconds
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(otpService *service.OTPService, authService *service.AuthService, production bool, refreshTTLSeconds int) *AuthHandlers {
	return &AuthHandlers{
		otpService:  otpService,
		authService: authService,
		production:  production,
		refreshTTL:  refreshTTLSeconds,
	}
}

type requestCodeRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Type       string `json:"type"`
}

// RequestCode handles a new-code request.
func (h *AuthHandlers) RequestCode(c *gin.Context) {
	h.requestCode(c, false)
}

// ResendCode handles an explicit resend; it regenerates the code,
// invalidating the previous one.
func (h *AuthHandlers) ResendCode(c *gin.Context) {
	h.requestCode(c, true)
}

func (h *AuthHandlers) requestCode(c *gin.Context, resend bool) {
	var req requestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	otpType := core.OTPTypeLogin
	if req.Type != "" {
		otpType = core.OTPType(req.Type)
	}

	metadata := map[string]string{
		"ip":         c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	}
	if resend {
		metadata["resend"] = "true"
	}

	result, err := h.otpService.RequestCode(c.Request.Context(), otpType, req.Identifier, metadata)
	if err != nil {
		if rle, ok := core.IsRateLimited(err); ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Please wait before requesting a new code",
				"retry_after": int(rle.RetryAfter.Seconds()),
			})
			return
		}
		if errors.Is(err, core.ErrInvalidIdentifier) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identifier format"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send code"})
		return
	}

	resp := gin.H{
		"success":      true,
		"expires_at":   result.ExpiresAt.Unix(),
		"resend_after": int(result.ResendAfter.Seconds()),
		"channel":      result.Channel,
	}
	if result.TestCode != "" {
		resp["otp"] = result.TestCode
	}
	c.JSON(http.StatusOK, resp)
}

type verifyCodeRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Code       string `json:"code" binding:"required"`
	Type       string `json:"type"`
	Role       string `json:"role"`
}

// VerifyCode verifies a submitted code and, on success, issues a token
// pair with the refresh token doubled into an http-only cookie.
func (h *AuthHandlers) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	otpType := core.OTPTypeLogin
	if req.Type != "" {
		otpType = core.OTPType(req.Type)
	}

	result, err := h.otpService.VerifyCode(c.Request.Context(), otpType, req.Identifier, req.Code)
	if err != nil {
		if errors.Is(err, core.ErrInvalidIdentifier) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identifier format"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}

	if !result.Valid {
		resp := gin.H{"valid": false, "code": result.Code}
		if result.Code == core.CodeInvalidOTP {
			resp["remaining_attempts"] = result.RemainingAttempts
		}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	role := req.Role
	if role == "" {
		role = "user"
	}
	pair, err := h.authService.IssueTokens(core.Identity{Subject: req.Identifier, Role: role})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue tokens"})
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken, h.refreshTTL)
	c.JSON(http.StatusOK, gin.H{
		"valid":         true,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"expires_in":    pair.ExpiresIn,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a refresh token, read from the body or the cookie.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(refreshCookieName)
	}
	if req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token is required"})
		return
	}

	pair, err := h.authService.RotateTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		status := http.StatusUnauthorized
		msg := "Invalid refresh token"
		switch {
		case errors.Is(err, core.ErrTokenExpired):
			msg = "Refresh token expired"
		case errors.Is(err, core.ErrTokenRevoked):
			msg = "Refresh token has been revoked"
		case errors.Is(err, core.ErrInvalidToken), errors.Is(err, core.ErrInvalidAudience):
			status = http.StatusBadRequest
		default:
			status = http.StatusInternalServerError
			msg = "Failed to refresh tokens"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken, h.refreshTTL)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"expires_in":    pair.ExpiresIn,
	})
}

type logoutRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the provided tokens and clears the refresh cookie.
// Revocation is idempotent, so logout always succeeds.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(refreshCookieName)
	}

	if err := h.authService.Logout(c.Request.Context(), req.AccessToken, req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	h.setRefreshCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated identity.
func (h *AuthHandlers) Me(c *gin.Context) {
	identity, exists := c.Get(ContextIdentity)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Identity not found in context"})
		return
	}

	id := identity.(*core.Identity)
	c.JSON(http.StatusOK, gin.H{
		"subject": id.Subject,
		"role":    id.Role,
	})
}

// Authorize reports success for any request that passed the auth
// middleware.
func (h *AuthHandlers) Authorize(c *gin.Context) {
	identity, exists := c.Get(ContextIdentity)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Identity not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorized": true,
		"subject":    identity.(*core.Identity).Subject,
	})
}

func (h *AuthHandlers) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, maxAge, "/", "", h.production, true)
}
