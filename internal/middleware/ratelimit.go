package middleware

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitedMessage is shown when a client exceeds the sign-up limit.
const RateLimitedMessage = "Too many sign-up attempts. Please wait a moment and try again."

// Limiter decides whether one more request for key fits its budget.
// retryAfter is meaningful only when allowed is false.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimiter counts requests per key in fixed windows, in process memory.
type RateLimiter struct {
	maxAttempts int
	window      time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*rateLimitEntry

	stop     chan struct{}
	stopOnce sync.Once
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
// Call Stop to release it.
func NewRateLimiter(maxAttempts int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
		entries:     make(map[string]*rateLimitEntry),
		stop:        make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether a request for key fits in the current window and
// counts it if so.
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.entries[key]
	if !ok || now.Sub(entry.windowStart) >= rl.window {
		rl.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
		return true, 0, nil
	}

	if entry.count < rl.maxAttempts {
		entry.count++
		return true, 0, nil
	}
	return false, rl.window - now.Sub(entry.windowStart), nil
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// cleanup periodically removes expired entries.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictExpired()
		}
	}
}

func (rl *RateLimiter) evictExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, entry := range rl.entries {
		if now.Sub(entry.windowStart) >= rl.window {
			delete(rl.entries, key)
		}
	}
}

// RateLimitMiddleware wraps a rate limiter for use as HTTP middleware.
type RateLimitMiddleware struct {
	limiter    Limiter
	logger     *slog.Logger
	onLimit    func()
	trustProxy bool
}

// NewRateLimitMiddleware creates a new rate limit middleware. onLimit, when
// non-nil, runs for every rejected request. Clients are keyed by their
// forwarded address only when trustProxy is set.
func NewRateLimitMiddleware(limiter Limiter, logger *slog.Logger, onLimit func(), trustProxy bool) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:    limiter,
		logger:     logger,
		onLimit:    onLimit,
		trustProxy: trustProxy,
	}
}

// Limit returns middleware that rate limits requests per client IP.
//
// htmx requests get a fragment retargeted at the form's flash area so the
// entered values stay on screen. Other requests get a small HTML page.
// A failing limiter lets the request through.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r, m.trustProxy)

		allowed, wait, err := m.limiter.Allow(r.Context(), clientIP)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "rate limiter unavailable", "error", err)
			allowed = true
		}
		if allowed {
			next.ServeHTTP(w, r)
			return
		}

		m.logger.WarnContext(r.Context(), "rate limit exceeded",
			"ip", clientIP,
			"path", r.URL.Path,
			"method", r.Method,
		)
		if m.onLimit != nil {
			m.onLimit()
		}

		retryAfter := int(wait.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		if isHTMX(r) {
			w.Header().Set("HX-Retarget", "#signup-flash")
			w.Header().Set("HX-Reswap", "innerHTML")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`<p role="alert" class="text-sm text-red-600">` + html.EscapeString(RateLimitedMessage) + `</p>`))
			return
		}

		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Too Many Requests</title></head>
<body>
<h1>Too Many Requests</h1>
<p>` + html.EscapeString(RateLimitedMessage) + `</p>
</body>
</html>`))
	})
}
