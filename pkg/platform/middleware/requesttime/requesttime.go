// Package requesttime captures a single "now" at the start of each request so
// every component handling it agrees on the timestamp.
package requesttime

import (
	"net/http"
	"time"

	"webfinger/pkg/requestcontext"
)

// Middleware stores the request start time in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
