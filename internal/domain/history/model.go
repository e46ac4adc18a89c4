package history

import "time"

// Entry es un registro de auditoría inmutable de un cambio de estado.
// Los estados se guardan como tokens (string): el ledger audita lo que se
// escribió; validar tokens es responsabilidad del módulo cats.
type Entry struct {
	ID    string
	CatID string

	// OldStatus es nil solo en la entrada creada al registrar el gato.
	OldStatus *string
	NewStatus string

	Notes string

	UpdatedByID   string
	UpdatedByName string

	UpdatedAt time.Time
}
