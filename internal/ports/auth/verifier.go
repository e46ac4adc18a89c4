package auth

import "context"

// AuthVerifier verifica un token de sesión y devuelve el principal fresco
// (estado de aprobación incluido) o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
