package internal

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Identity providers
const (
	ProviderLog    = "log"
	ProviderKratos = "kratos"
)

// Rate limit stores
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Application base URL (used to build absolute links)
	BaseURL string

	// Where the back arrow and "Sign in here" send the user
	BackURL string

	// Identity provider: "log" (development) or "kratos"
	IdentityProvider string
	KratosPublicURL  string
	KratosTimeout    time.Duration

	// Sign-up submissions allowed per client IP per window
	SignupRateLimit  int
	SignupRateWindow time.Duration

	// Honour X-Forwarded-For / X-Real-IP; enable only behind a trusted proxy
	TrustProxy bool

	// Where rate limit counters live: "memory" (per process) or "redis"
	RateLimitStore string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
		BackURL: getEnv("BACK_URL", "/"),

		IdentityProvider: getEnv("IDENTITY_PROVIDER", ProviderLog),
		KratosPublicURL:  getEnv("KRATOS_PUBLIC_URL", ""),
		KratosTimeout:    getEnvDuration("KRATOS_TIMEOUT", 10*time.Second),

		SignupRateLimit:  getEnvInt("SIGNUP_RATE_LIMIT", 5),
		SignupRateWindow: getEnvDuration("SIGNUP_RATE_WINDOW", time.Hour),

		TrustProxy: getEnvBool("TRUST_PROXY", false),

		RateLimitStore: getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),

		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.IdentityProvider {
	case ProviderLog:
	case ProviderKratos:
		if c.KratosPublicURL == "" {
			return fmt.Errorf("KRATOS_PUBLIC_URL is required when IDENTITY_PROVIDER is 'kratos'")
		}
	default:
		return fmt.Errorf("IDENTITY_PROVIDER must be either 'log' or 'kratos', got: %s", c.IdentityProvider)
	}

	if c.SignupRateLimit < 1 {
		return fmt.Errorf("SIGNUP_RATE_LIMIT must be at least 1, got: %d", c.SignupRateLimit)
	}

	if c.SignupRateWindow <= 0 {
		return fmt.Errorf("SIGNUP_RATE_WINDOW must be positive, got: %s", c.SignupRateWindow)
	}

	switch c.RateLimitStore {
	case RateLimitStoreMemory:
	case RateLimitStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when RATE_LIMIT_STORE is 'redis'")
		}
	default:
		return fmt.Errorf("RATE_LIMIT_STORE must be either 'memory' or 'redis', got: %s", c.RateLimitStore)
	}

	if !isLocalPath(c.BackURL) {
		return fmt.Errorf("BACK_URL must be a local path, got: %q", c.BackURL)
	}

	return nil
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// isLocalPath reports whether p stays on this site. Browsers read "//host"
// and "/\host" as protocol-relative, so backslashes are refused outright.
func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsRune(p, '\\') {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
