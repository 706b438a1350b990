// Package middleware holds chi-compatible HTTP middleware shared by
// the admin server.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"atlaskv/internal/platform/obs"
)

const requestIDHeader = "X-Request-Id"

// RequestID stamps every request with a correlation id and logs it
// alongside the method and path, so a caller can correlate retries and
// an operator can grep one request's lifecycle out of the log.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		obs.Info.Printf("request_id=%s method=%s path=%s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
