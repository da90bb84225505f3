package httpserver

import (
	"errors"
	"log"
	"net/http"

	"chatapi/internal/domain"
)

// writeError maps application errors onto HTTP responses.
//
// Not-found covers both truly absent resources and resources the requester
// may not see; forbidden is only used for actions denied on a resource the
// requester can see. Validation failures return the per-field message map.
// Anything else is an internal failure and stays opaque to the caller.
func writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "you do not have permission to perform this action"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "incorrect username or password"})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid or expired token"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"detail": "already exists"})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal server error"})
	}
}

func invalidJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body"})
}
