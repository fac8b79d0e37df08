package api

import (
	"errors"
	"net/http"

	"fundcrm/internal/domain"
)

// writeErr maps domain error types to HTTP statuses. Anything
// unrecognized is a 500 with a generic body; the detail goes to the log
// only.
func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound     *domain.NotFoundError
		denied       *domain.AccessDeniedError
		validation   *domain.ValidationError
		conflict     *domain.ConflictError
		unauthorized *domain.UnauthorizedError
	)
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Message})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Message})
	case errors.As(err, &denied):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": denied.Message})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": conflict.Message})
	case errors.As(err, &unauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": unauthorized.Message})
	default:
		h.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
