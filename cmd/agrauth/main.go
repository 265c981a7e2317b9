package main

import (
	"context"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"

	"github.com/agrostack/agrauth/adapters/blacklist"
	"github.com/agrostack/agrauth/adapters/cache"
	"github.com/agrostack/agrauth/adapters/delivery"
	"github.com/agrostack/agrauth/adapters/events"
	"github.com/agrostack/agrauth/adapters/tokenizer"
	"github.com/agrostack/agrauth/config"
	"github.com/agrostack/agrauth/internal/logger"
	"github.com/agrostack/agrauth/ports"
	"github.com/agrostack/agrauth/service"
	transport "github.com/agrostack/agrauth/transport/http"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV") == "production")

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// The primary cache is best-effort: when redis stays unreachable
	// after the retry budget, the store runs on process memory alone.
	var primary ports.Cache
	var eventPub ports.EventPublisher

	redisCache, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.RedisRetries, cfg.CacheOpTimeout)
	if err != nil {
		logger.Log.Warnf("redis unavailable, continuing with in-process cache: %v", err)
	} else {
		primary = redisCache
		defer redisCache.Close()

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisCache.Client()},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			logger.Log.Warnf("failed to create event publisher: %v", err)
		} else {
			eventPub = events.NewWatermillPublisher(publisher)
		}
	}

	fallback := cache.NewMemory()
	defer fallback.Close()
	store := cache.NewFailover(primary, fallback)

	jwtTokenizer, err := tokenizer.NewJWTTokenizer(
		cfg.AccessSecret, cfg.RefreshSecret, cfg.Issuer,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)
	if err != nil {
		logger.Log.Fatalf("failed to configure tokenizer: %v", err)
	}

	otpService := service.NewOTPService(store, delivery.NewLog(), eventPub, cfg.OTP, cfg.Production())
	authService := service.NewAuthService(jwtTokenizer, blacklist.New(store), eventPub)

	router := transport.SetupRouter(otpService, authService, transport.RouterConfig{
		Production:      cfg.Production(),
		RefreshTTL:      cfg.RefreshTokenTTL,
		RateLimitLimit:  cfg.RateLimitLimit,
		RateLimitPeriod: cfg.RateLimitPeriod,
	})

	logger.Log.Infof("listening on :%s", cfg.HTTPPort)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		logger.Log.Fatalf("server stopped: %v", err)
	}
}
