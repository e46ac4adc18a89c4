package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cat-tnr-registry/internal/domain/users"
	"cat-tnr-registry/internal/ports/auth"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// UserSource carga la cuenta fresca al verificar. Lo satisfacen
// users.Service y cualquier users.Repository.
type UserSource interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

// Verifier implementa auth.AuthVerifier. Valida la firma del token y
// después re-lee la cuenta del store: el principal resultante refleja el
// estado de aprobación ACTUAL, no el del momento del login.
type Verifier struct {
	secret []byte
	source UserSource
}

func NewVerifier(secret string, source UserSource) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrNoSecret
	}
	if source == nil {
		return nil, errors.New("jwt verifier: nil user source")
	}
	return &Verifier{
		secret: []byte(secret),
		source: source,
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	var claims sessionClaims
	parsed, err := jwtlib.ParseWithClaims(token, &claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	userID := strings.TrimSpace(claims.Subject)
	if userID == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	u, err := v.source.GetByID(ctx, userID)
	if err != nil {
		// cuenta borrada después de emitir el token
		return auth.Claims{}, ErrInvalidToken
	}

	return auth.Claims{
		UserID:  u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
		Status:  string(u.Status),
	}, nil
}
