package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "webfinger/pkg/domain-errors"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeJRD  = "application/jrd+json"
)

// ErrorResponse is the envelope for every non-2xx JSON body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes v as application/json with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	WriteJSONAs(w, status, ContentTypeJSON, v)
}

// WriteJSONAs encodes v with an explicit content type, for JSON media types
// such as application/jrd+json.
func WriteJSONAs(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into its HTTP status. Internal errors
// never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := StatusFor(code)
	msg := "Internal server error"
	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			msg = de.Message
		}
	}
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// StatusFor maps a domain code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeMissingParameter, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
