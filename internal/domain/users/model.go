package users

import "time"

// Status define el estado de aprobación de una cuenta.
// @Enum PENDING, APPROVED, REJECTED
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// User es una cuenta de staff del programa TNR.
type User struct {
	ID    string
	Name  string
	Email string

	// bcrypt; nunca sale en respuestas.
	PasswordHash string

	IsAdmin bool
	Status  Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
