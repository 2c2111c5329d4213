package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webfinger/internal/identity/handler"
	ratelimit "webfinger/internal/ratelimit/middleware"
	"webfinger/pkg/platform/httputil"
	"webfinger/pkg/platform/middleware/accesslog"
	"webfinger/pkg/platform/middleware/headers"
	"webfinger/pkg/platform/middleware/metadata"
	"webfinger/pkg/platform/middleware/requestid"
	"webfinger/pkg/platform/middleware/requesttime"
)

const maxBodyBytes = 1 << 10

// Deps are the collaborators the public router needs.
type Deps struct {
	WebFinger      *handler.Handler
	RateLimit      *ratelimit.Middleware
	Logger         *slog.Logger
	AllowedOrigins []string
	TrustProxy     bool
}

// NewRouter wires the public endpoints behind the shared middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(d.TrustProxy))
	r.Use(accesslog.Middleware(d.Logger))
	r.Use(headers.Security)
	// Ahead of CORS so preflight requests count against the same budget.
	if d.RateLimit != nil {
		r.Use(d.RateLimit.RateLimit)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(chimw.RequestSize(maxBodyBytes))

	d.WebFinger.Register(r)
	r.Get("/health", handleHealth)

	return r
}

// handleHealth reports liveness only; it must not reveal anything about the
// identities being served.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewMetricsRouter serves Prometheus metrics from gatherer. It is mounted on
// its own listener so the public API never exposes registry counts.
func NewMetricsRouter(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}
