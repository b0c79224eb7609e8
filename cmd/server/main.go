package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/DukeRupert/rackmate/internal"
	"github.com/DukeRupert/rackmate/internal/csrf"
	"github.com/DukeRupert/rackmate/internal/handler"
	"github.com/DukeRupert/rackmate/internal/identity"
	"github.com/DukeRupert/rackmate/internal/metrics"
	"github.com/DukeRupert/rackmate/internal/middleware"
	"github.com/DukeRupert/rackmate/internal/signup"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Identity service the form submits to
	submitter := newSubmitter(cfg, logger)
	logger.Info("Identity provider ready", "provider", cfg.IdentityProvider)

	// Initialize middleware
	isSecure := !cfg.IsDevelopment()
	loggingMw := middleware.NewRequestLoggingMiddleware(logger, cfg.TrustProxy)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	signupLimiter, closeLimiter, err := newSignupLimiter(cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()
	logger.Info("Sign-up rate limiter ready", "store", cfg.RateLimitStore, "limit", cfg.SignupRateLimit, "window", cfg.SignupRateWindow)
	signupRateLimit := middleware.NewRateLimitMiddleware(signupLimiter, logger, metrics.SignupRateLimited.Inc, cfg.TrustProxy)

	// Initialize handlers
	signUpHandler := handler.NewSignUpHandler(submitter, cfg.BackURL, isSecure, logger)
	homeHandler := handler.NewHomeHandler(logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus metrics
	if cfg.MetricsUsername == "" && cfg.MetricsPassword == "" {
		logger.Warn("Metrics endpoint is not protected; set METRICS_USERNAME and METRICS_PASSWORD")
	}
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	homeHandler.RegisterRoutes(mux)
	signUpHandler.RegisterRoutes(mux, csrf.Protect(handler.ErrorHandler(logger)), signupRateLimit.Limit)

	// Outermost first: metrics sees every response, including rejected ones.
	app := middleware.Stack(
		metrics.Middleware,
		loggingMw.Handler,
		securityMw.Handler,
		middleware.LimitBody(middleware.DefaultMaxBodyBytes),
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env, "base_url", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newSubmitter builds the configured identity provider, instrumented with
// latency metrics.
func newSubmitter(cfg *internal.Config, logger *slog.Logger) signup.Submitter {
	var sub signup.Submitter
	switch cfg.IdentityProvider {
	case internal.ProviderKratos:
		sub = identity.NewKratosRegistrar(identity.KratosConfig{
			PublicURL: cfg.KratosPublicURL,
			Timeout:   cfg.KratosTimeout,
			Logger:    logger,
		})
	default:
		sub = identity.NewLogRegistrar(logger)
	}
	return identity.Instrument(sub, cfg.IdentityProvider)
}

// newSignupLimiter builds the sign-up rate limiter for the configured store.
// The returned func releases its resources.
func newSignupLimiter(cfg *internal.Config) (middleware.Limiter, func(), error) {
	if cfg.RateLimitStore != internal.RateLimitStoreRedis {
		rl := middleware.NewRateLimiter(cfg.SignupRateLimit, cfg.SignupRateWindow)
		return rl, rl.Stop, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis connection failed: %w", err)
	}

	rl := middleware.NewRedisRateLimiter(client, "rackmate:signup:", cfg.SignupRateLimit, cfg.SignupRateWindow)
	return rl, func() { _ = client.Close() }, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
