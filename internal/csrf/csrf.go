// Package csrf provides CSRF protection using the double-submit cookie pattern.
//
// A random token is stored in a cookie and echoed in every form as a hidden
// field. A cross-site attacker can make the browser send the cookie but
// cannot read it, so it cannot put the matching value in the form body.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/DukeRupert/rackmate/internal/domain"
)

const (
	// CookieName is the name of the CSRF token cookie.
	CookieName = "rackmate_csrf"

	// FormFieldName is the name of the CSRF token form field.
	FormFieldName = "csrf_token"

	// HeaderName carries the token on requests without a form body.
	HeaderName = "X-CSRF-Token"

	// TokenLength is the number of random bytes for the token (256 bits).
	TokenLength = 32

	// CookieMaxAge is the lifetime of the CSRF cookie in seconds (1 hour).
	CookieMaxAge = 3600
)

// GenerateToken returns 32 random bytes, base64 URL-encoded.
func GenerateToken() (string, error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ValidateToken compares the cookie token with the submitted token in
// constant time.
func ValidateToken(cookieToken, submitted string) bool {
	if cookieToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submitted)) == 1
}

// ValidateRequest checks the request's submitted token against its cookie.
// The form field wins over the header when both are present.
func ValidateRequest(r *http.Request) bool {
	submitted := r.FormValue(FormFieldName)
	if submitted == "" {
		submitted = r.Header.Get(HeaderName)
	}
	return ValidateToken(TokenFromRequest(r), submitted)
}

// TokenFromRequest returns the token cookie value, or "" without one.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetCookie writes the token cookie. It is readable by forms only through
// the server-rendered hidden field, so HttpOnly is set.
func SetCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// EnsureToken returns the request's existing token or issues a new one.
// Handlers call it on every render that includes a form.
func EnsureToken(w http.ResponseWriter, r *http.Request, isSecure bool) (string, error) {
	if token := TokenFromRequest(r); token != "" {
		return token, nil
	}

	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	SetCookie(w, token, isSecure)
	return token, nil
}

// ErrInvalidToken is reported when an unsafe request fails the token check.
var ErrInvalidToken = domain.Errorf(domain.EFORBIDDEN, "csrf.protect",
	"Invalid or missing CSRF token. Please reload the page and try again.")

// Protect rejects unsafe requests whose token does not match, passing
// ErrInvalidToken to fail. A nil fail writes a plain 403.
// Safe methods pass through untouched.
func Protect(fail func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	if fail == nil {
		fail = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, domain.ErrorMessage(err), http.StatusForbidden)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if !ValidateRequest(r) {
				fail(w, r, ErrInvalidToken)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
