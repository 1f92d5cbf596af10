package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/MuzammilBaloch-22/Cakelora/pkg/logger"
)

// SessionIDHeader identifies the shopper's cart across requests.
const SessionIDHeader = "X-Session-ID"

// Session resolves the cart session for the request. A missing or malformed
// X-Session-ID is replaced with a fresh UUID, which is echoed back so the
// client can reuse it. Downstream code reads it with logger.SessionIDFromContext.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(SessionIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithSessionID(r.Context(), id)))
	})
}
