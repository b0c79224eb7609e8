package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveLogged(t *testing.T, req *http.Request, status int) string {
	t.Helper()
	var buf bytes.Buffer
	mw := NewRequestLoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil)), false)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != status {
		t.Fatalf("expected status %d to pass through, got %d", status, rec.Code)
	}
	return buf.String()
}

func TestRequestLoggingMiddleware_LogsBasicInfo(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/signup", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("User-Agent", "test-agent/1.0")
	req.Header.Set("HX-Request", "true")

	out := serveLogged(t, req, http.StatusUnprocessableEntity)

	for _, want := range []string{"method=POST", "path=/signup", "status=422", "duration_ms=", "ip=192.168.1.1", "test-agent/1.0", "htmx=true", "level=INFO"} {
		if !strings.Contains(out, want) {
			t.Errorf("log should contain %q, got: %s", want, out)
		}
	}
}

func TestRequestLoggingMiddleware_ServerErrorsAtWarn(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/signup", nil)

	out := serveLogged(t, req, http.StatusInternalServerError)

	if !strings.Contains(out, "level=WARN") {
		t.Errorf("5xx should log at WARN, got: %s", out)
	}
}

func TestRequestLoggingMiddleware_RedactsSensitiveQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/signup?email=jane%40example.com&password=hunter2&ref=home", nil)

	out := serveLogged(t, req, http.StatusOK)

	if strings.Contains(out, "hunter2") || strings.Contains(out, "jane") {
		t.Errorf("log should not contain sensitive values, got: %s", out)
	}
	if !strings.Contains(out, "ref=home") {
		t.Errorf("log should keep harmless params, got: %s", out)
	}
}

func TestRequestLoggingMiddleware_SkipsQuietPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics", "/static/app.css"} {
		t.Run(path, func(t *testing.T) {
			out := serveLogged(t, httptest.NewRequest(http.MethodGet, path, nil), http.StatusOK)
			if out != "" {
				t.Errorf("expected no log for %s, got: %s", path, out)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		path, query, want string
	}{
		{"/signup", "", "/signup"},
		{"/", "registered=1", "/?registered=1"},
		{"/signup", "csrf_token=abc&x=1", "/signup?csrf_token=[REDACTED]&x=1"},
		{"/signup", "Confirm_Password=abc", "/signup?Confirm_Password=[REDACTED]"},
		{"/signup", "novalue", "/signup"},
	}

	for _, tt := range tests {
		if got := sanitizePath(tt.path, tt.query); got != tt.want {
			t.Errorf("sanitizePath(%q, %q) = %q, want %q", tt.path, tt.query, got, tt.want)
		}
	}
}

func TestStack_OrdersOutermostFirst(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Stack(mark("a"), mark("b"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "a,b,handler" {
		t.Errorf("unexpected order: %v", order)
	}
}
