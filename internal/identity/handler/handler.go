package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"webfinger/internal/identity/models"
	dErrors "webfinger/pkg/domain-errors"
	"webfinger/pkg/platform/httputil"
	"webfinger/pkg/requestcontext"
)

// Path is the well-known WebFinger endpoint.
const Path = "/.well-known/webfinger"

// Resolver looks up discovery records.
type Resolver interface {
	Lookup(ctx context.Context, resource string) (models.DiscoveryRecord, error)
}

// Handler serves WebFinger requests.
type Handler struct {
	resolver Resolver
	logger   *slog.Logger
}

func New(resolver Resolver, logger *slog.Logger) *Handler {
	return &Handler{resolver: resolver, logger: logger}
}

// Register mounts the WebFinger route.
func (h *Handler) Register(r chi.Router) {
	r.Get(Path, h.HandleWebFinger)
}

// HandleWebFinger answers GET /.well-known/webfinger?resource=...
func (h *Handler) HandleWebFinger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resource := r.URL.Query().Get("resource")

	rec, err := h.resolver.Lookup(ctx, resource)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "webfinger lookup failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSONAs(w, http.StatusOK, httputil.ContentTypeJRD, rec)
}
