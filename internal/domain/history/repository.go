package history

import "context"

// Repository es el lado de lectura del ledger. Los appends ocurren solo
// dentro de las transacciones del store de gatos (alta y cambio de estado),
// nunca como escritura independiente: así el ledger es append-only y la
// cadena old/new no puede divergir del estado actual del gato.
type Repository interface {
	// ListByCat devuelve las entradas de un gato, más reciente primero.
	ListByCat(ctx context.Context, catID string) ([]Entry, error)
}
