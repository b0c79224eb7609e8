package middleware

import "net/http"

// DefaultMaxBodyBytes bounds form posts. Four short text fields never come
// close.
const DefaultMaxBodyBytes = 64 << 10 // 64 KiB

// LimitBody caps request bodies at n bytes. Reads past the cap fail, which
// makes form parsing fail and the request get rejected.
func LimitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
