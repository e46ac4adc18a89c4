package policy

import (
	"errors"

	"cat-tnr-registry/internal/ports/auth"
)

// Class clasifica la operación pedida. La política no mira paths:
// el router decide qué clase aplica a cada ruta.
type Class int

const (
	// ClassPublic: rutas de autenticación (register/login), health, docs.
	ClassPublic Class = iota
	// ClassStaff: lectura y mutación de registros; requiere cuenta aprobada.
	ClassStaff
	// ClassAdmin: gestión de cuentas; requiere además isAdmin.
	ClassAdmin
)

var (
	ErrUnauthenticated = errors.New("no principal")
	ErrNotApproved     = errors.New("account not approved")
	ErrNotAdmin        = errors.New("admin required")
)

// Decide es la compuerta de acceso: función pura de (principal, clase),
// sin side effects, evaluada en cada request. Reglas en orden, gana la
// primera que aplica:
//  1. operación pública => permitir aun sin principal
//  2. sin principal => denegar
//  3. principal no APPROVED => denegar (aunque el token sea válido)
//  4. operación admin sin isAdmin => denegar
//  5. permitir
func Decide(claims auth.Claims, hasPrincipal bool, class Class) error {
	if class == ClassPublic {
		return nil
	}
	if !hasPrincipal {
		return ErrUnauthenticated
	}
	if !claims.Approved() {
		return ErrNotApproved
	}
	if class == ClassAdmin && !claims.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}
