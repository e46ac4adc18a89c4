package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"cat-tnr-registry/internal/platform/logger"
	"cat-tnr-registry/internal/platform/metrics"
	"cat-tnr-registry/internal/policy"
)

// Require evalúa la compuerta de acceso en cada request, antes de cualquier
// handler. La razón de denegación se loguea y se cuenta, pero al caller le
// llega un "forbidden" genérico: no revelamos si la cuenta está sin aprobar.
func Require(class policy.Class, log logger.Logger, mets *metrics.Metrics) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())

			err := policy.Decide(claims, ok, class)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			reason := "forbidden"
			status := http.StatusForbidden
			msg := "forbidden"

			switch {
			case errors.Is(err, policy.ErrUnauthenticated):
				reason = "unauthenticated"
				status = http.StatusUnauthorized
				msg = "unauthorized"
			case errors.Is(err, policy.ErrNotApproved):
				reason = "not_approved"
			case errors.Is(err, policy.ErrNotAdmin):
				reason = "not_admin"
			}

			log.Warn("request denied", map[string]any{
				"path":   r.URL.Path,
				"method": r.Method,
				"user":   claims.UserID,
				"reason": reason,
			})
			if mets != nil {
				mets.AuthDenied.WithLabelValues(reason).Inc()
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
		})
	}
}
