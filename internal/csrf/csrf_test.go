package csrf

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/rackmate/internal/domain"
)

func TestGenerateToken_UniqueAndEncoded(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 44)
}

func TestValidateToken(t *testing.T) {
	assert.True(t, ValidateToken("abc", "abc"))
	assert.False(t, ValidateToken("abc", "abd"))
	assert.False(t, ValidateToken("", ""))
	assert.False(t, ValidateToken("abc", ""))
}

func TestEnsureToken_ReusesCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/signup", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "existing"})
	rec := httptest.NewRecorder()

	token, err := EnsureToken(rec, req, false)

	require.NoError(t, err)
	assert.Equal(t, "existing", token)
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}

func TestEnsureToken_IssuesCookie(t *testing.T) {
	rec := httptest.NewRecorder()

	token, err := EnsureToken(rec, httptest.NewRequest(http.MethodGet, "/signup", nil), true)

	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
}

func TestProtect(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		cookie     string
		form       string
		header     string
		wantStatus int
	}{
		{"get passes", http.MethodGet, "", "", "", http.StatusOK},
		{"post with matching field", http.MethodPost, "tok", "tok", "", http.StatusOK},
		{"post with matching header", http.MethodPost, "tok", "", "tok", http.StatusOK},
		{"post without cookie", http.MethodPost, "", "tok", "", http.StatusForbidden},
		{"post without token", http.MethodPost, "tok", "", "", http.StatusForbidden},
		{"post with wrong token", http.MethodPost, "tok", "other", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := Protect(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			body := url.Values{}
			if tt.form != "" {
				body.Set(FormFieldName, tt.form)
			}
			req := httptest.NewRequest(tt.method, "/signup", strings.NewReader(body.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
		})
	}
}

func TestProtect_PassesErrorToFailureHandler(t *testing.T) {
	var got error
	h := Protect(func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signup", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(got))
}
