package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/predictlive/sanrentan/internal/logging"
	httperrors "github.com/predictlive/sanrentan/pkg/http/errors"
)

// withRequestID tags every request with an id, echoes it back in the
// X-Request-ID header and stores a scoped logger in the request context.
func withRequestID(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		scoped := logger.With().Str("request_id", requestID).Logger()
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), scoped)))
	})
}

// requireOrganizerSecret gates organizer endpoints behind the shared secret,
// expected as "Authorization: Bearer <secret>". Comparison is constant-time.
func requireOrganizerSecret(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if secret == "" {
			httperrors.RespondInternalError(w, "organizer secret not configured")
			return
		}

		presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "organizer secret required")
			return
		}
		next(w, r)
	}
}
