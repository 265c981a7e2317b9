// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/agrostack/agrauth/internal/logger"
)

// OTP groups the code-issuance policy knobs.
type OTP struct {
	Length           int
	Expiry           time.Duration // email and generic types
	PhoneExpiry      time.Duration // phone_* types
	AttemptsLimit    int
	ResendDelay      time.Duration // email and generic types
	PhoneResendDelay time.Duration // phone_* types, SMS costs more
	CountryCode      string        // default country code for bare numbers
	Secret           string        // HMAC key for stored code digests
	TestIdentifiers  []string      // bypass delivery, always echo the code
}

// Config holds all startup parameters.
type Config struct {
	Env      string
	HTTPPort string

	RedisURL          string
	RedisRetries      int
	CacheOpTimeout    time.Duration

	AccessSecret    string
	RefreshSecret   string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	OTP OTP

	RateLimitLimit  int64
	RateLimitPeriod time.Duration
}

// Production reports whether the process runs with production policy
// (no raw codes in responses, mandatory secrets).
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads the environment, optionally seeded from a .env file, and
// validates it. Secret misconfiguration is fatal here, at startup, so it
// can never surface per-request.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debugf("config: no .env file, using process environment: %v", err)
	}

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisRetries:   getInt("REDIS_RETRY_ATTEMPTS", 3),
		CacheOpTimeout: getDuration("CACHE_OP_TIMEOUT", 2*time.Second),

		Issuer:          getEnv("JWT_ISSUER", "agrauth"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		OTP: OTP{
			Length:           getInt("OTP_LENGTH", 6),
			Expiry:           time.Duration(getInt("OTP_EXPIRY", 600)) * time.Second,
			PhoneExpiry:      time.Duration(getInt("PHONE_OTP_EXPIRY", 300)) * time.Second,
			AttemptsLimit:    getInt("OTP_ATTEMPTS_LIMIT", 3),
			ResendDelay:      time.Duration(getInt("OTP_RESEND_DELAY", 30)) * time.Second,
			PhoneResendDelay: time.Duration(getInt("PHONE_OTP_RESEND_DELAY", 60)) * time.Second,
			CountryCode:      getEnv("DEFAULT_COUNTRY_CODE", "+91"),
			TestIdentifiers:  getList("TEST_IDENTIFIERS"),
		},

		RateLimitLimit:  int64(getInt("RATE_LIMIT_LIMIT", 10)),
		RateLimitPeriod: getDuration("RATE_LIMIT_PERIOD", time.Minute),
	}

	cfg.AccessSecret = getEnv("JWT_ACCESS_SECRET", "")
	cfg.RefreshSecret = getEnv("JWT_REFRESH_SECRET", "")
	cfg.OTP.Secret = getEnv("OTP_SECRET", "")

	if cfg.Production() {
		if len(cfg.AccessSecret) < 32 {
			return nil, fmt.Errorf("config: JWT_ACCESS_SECRET must be at least 32 characters in production")
		}
		if len(cfg.RefreshSecret) < 32 {
			return nil, fmt.Errorf("config: JWT_REFRESH_SECRET must be at least 32 characters in production")
		}
		if cfg.AccessSecret == cfg.RefreshSecret {
			return nil, fmt.Errorf("config: access and refresh secrets must differ")
		}
		if len(cfg.OTP.Secret) < 16 {
			return nil, fmt.Errorf("config: OTP_SECRET must be at least 16 characters in production")
		}
	} else {
		if cfg.AccessSecret == "" {
			cfg.AccessSecret = "development-access-secret-change-me-in-prod"
			logger.Log.Warn("config: using default JWT_ACCESS_SECRET, set one before deploying")
		}
		if cfg.RefreshSecret == "" {
			cfg.RefreshSecret = "development-refresh-secret-change-me-in-prod"
			logger.Log.Warn("config: using default JWT_REFRESH_SECRET, set one before deploying")
		}
		if cfg.OTP.Secret == "" {
			cfg.OTP.Secret = "development-otp-secret"
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Log.Warnf("config: invalid integer %q for %s, using %d", v, key, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Log.Warnf("config: invalid duration %q for %s, using %s", v, key, fallback)
		return fallback
	}
	return d
}

func getList(key string) []string {
	v := getEnv(key, "")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
