package middleware

import (
	"context"
	"net/http"
	"strings"

	"cat-tnr-registry/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// AuthContext:
// - Si verifier != nil y viene Bearer token => Verify() resuelve el principal
//   fresco (estado de aprobación re-leído del store, no del token).
// - Si verifier == nil => modo dev: headers X-Debug-User-ID / X-Debug-Admin /
//   X-Debug-Status arman el principal.
// - Sin claims el request sigue igual; la compuerta Require decide después.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				if claims, ok := debugClaims(r); ok {
					next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				// no cortamos acá: token inválido == sin principal,
				// Require devuelve el 401 genérico
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

func withClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// debugClaims arma un principal desde headers para dev y tests e2e.
// Status default APPROVED para que el camino feliz no pida tres headers.
func debugClaims(r *http.Request) (auth.Claims, bool) {
	uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID"))
	if uid == "" {
		return auth.Claims{}, false
	}

	status := strings.TrimSpace(r.Header.Get("X-Debug-Status"))
	if status == "" {
		status = auth.StatusApproved
	}

	return auth.Claims{
		UserID:  uid,
		IsAdmin: strings.EqualFold(r.Header.Get("X-Debug-Admin"), "true"),
		Status:  status,
	}, true
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
