package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByMatchedPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup/toggle", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(mux)

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/signup/toggle", "200"))

	req := httptest.NewRequest(http.MethodPost, "/signup/toggle", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/signup/toggle", "200"))
	assert.Equal(t, before+1, after)
}

func TestMiddleware_UnmatchedRoutesShareOneLabel(t *testing.T) {
	handler := Middleware(http.NewServeMux())

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))

	for _, path := range []string{"/a", "/b/c", "/wp-login.php"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	assert.Equal(t, before+3, after)
}

func TestMiddleware_SkipsMetricsEndpoint(t *testing.T) {
	called := false
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.True(t, called)
}
