package middleware

import (
	"context"
	"net/http"
	"time"
)

// Deadline bounds the request context so database and storage calls give up
// before the server's WriteTimeout closes the connection. A non-positive d
// leaves the context untouched.
func Deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
