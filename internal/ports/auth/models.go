package auth

// Estados de aprobación de una cuenta. Se re-chequean en cada request,
// no se cachean al login: un admin puede revocar acceso entre requests.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Claims es el principal resuelto para un request.
type Claims struct {
	UserID  string
	Email   string
	Name    string
	IsAdmin bool
	Status  string // PENDING | APPROVED | REJECTED
}

// Approved indica si el principal puede operar sobre registros.
func (c Claims) Approved() bool {
	return c.Status == StatusApproved
}
