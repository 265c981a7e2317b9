package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrostack/agrauth/service"
)

// RouterConfig carries the transport-level knobs.
type RouterConfig struct {
	Production      bool
	RefreshTTL      time.Duration
	RateLimitLimit  int64
	RateLimitPeriod time.Duration
}

// SetupRouter sets up the gin router.
func SetupRouter(otpService *service.OTPService, authService *service.AuthService, cfg RouterConfig) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	handlers := NewAuthHandlers(otpService, authService, cfg.Production, int(cfg.RefreshTTL.Seconds()))

	auth := router.Group("/auth")
	auth.Use(RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		auth.POST("/otp/request", handlers.RequestCode)
		auth.POST("/otp/resend", handlers.ResendCode)
		auth.POST("/otp/verify", handlers.VerifyCode)
		auth.POST("/refresh", handlers.Refresh)
		auth.POST("/logout", handlers.Logout)
	}

	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
		api.GET("/authorize", handlers.Authorize)
	}

	return router
}
