// Package accesslog writes one structured log line per request.
package accesslog

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mssola/useragent"

	"webfinger/pkg/requestcontext"
)

// CallerKind buckets a User-Agent for logs.
type CallerKind string

const (
	CallerBot     CallerKind = "bot"
	CallerBrowser CallerKind = "browser"
	CallerOther   CallerKind = "other"
)

// Classify returns the caller kind for a raw User-Agent string. Fediverse
// servers typically identify as bots or as unknown agents.
func Classify(raw string) CallerKind {
	if raw == "" {
		return CallerOther
	}
	ua := useragent.New(raw)
	if ua.Bot() {
		return CallerBot
	}
	if name, _ := ua.Browser(); name != "" && ua.OS() != "" {
		return CallerBrowser
	}
	return CallerOther
}

// Middleware logs method, path, status, duration and caller kind. The query
// string is deliberately left out so looked-up resources do not land in logs.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			ctx := r.Context()
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.InfoContext(ctx, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(requestcontext.Now(ctx)).Milliseconds(),
				"request_id", requestcontext.RequestID(ctx),
				"caller", string(Classify(r.UserAgent())),
			)
		})
	}
}
