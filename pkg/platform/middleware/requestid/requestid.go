// Package requestid assigns every request an identifier and echoes it back in
// the X-Request-ID response header.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"webfinger/pkg/requestcontext"
)

const Header = "X-Request-ID"

const maxInboundLength = 128

// Middleware reuses a caller-supplied X-Request-ID when it is short enough to
// log safely, otherwise it generates a UUID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" || len(id) > maxInboundLength {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), id)))
	})
}
