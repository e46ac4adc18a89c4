package cats

import (
	"context"
	"errors"

	"cat-tnr-registry/internal/domain/history"
)

var (
	ErrNotFound = errors.New("cat not found")

	// ErrSameStatus: transición no-op rechazada. Se chequea adentro de la
	// transacción (no antes) para que valga también bajo concurrencia.
	ErrSameStatus = errors.New("cat already has that status")
)

// Repository es el único escritor de filas de gatos. Las dos operaciones
// de escritura son transaccionales con el ledger: fila del gato y entrada
// de historial commitean juntas o ninguna.
type Repository interface {
	// Create inserta el gato y su primera entrada de historial
	// (OldStatus nil) en una misma transacción.
	Create(ctx context.Context, c Cat, first history.Entry) error

	GetByID(ctx context.Context, id string) (Cat, error)

	// List devuelve todos los gatos, created_at más reciente primero.
	// Gap conocido: sin paginación (igual que el original); con crecimiento
	// real habría que agregar cursor por created_at.
	List(ctx context.Context) ([]Cat, error)

	// ChangeStatus lee el estado actual con lock, rechaza no-ops
	// (ErrSameStatus), actualiza status/updated_by/updated_at y agrega la
	// entrada de historial con OldStatus = estado previo, todo en una
	// transacción. Completa e.OldStatus adentro del lock.
	ChangeStatus(ctx context.Context, catID string, e history.Entry) (Cat, history.Entry, error)

	// CountByStatus devuelve conteos por token de estado (dashboard).
	CountByStatus(ctx context.Context) (map[Status]int, error)
}
