package postgres

import (
	"context"
	"database/sql"

	"cat-tnr-registry/internal/domain/history"
)

type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// ListByCat devuelve el historial de un gato, append más reciente primero
// (orden por seq, no por timestamp: dos appends pueden compartir reloj).
func (r *HistoryRepo) ListByCat(ctx context.Context, catID string) ([]history.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			h.id, h.cat_id, h.old_status, h.new_status, h.notes,
			h.updated_by, COALESCE(u.name, ''), h.updated_at
		FROM cat_status_history h
		LEFT JOIN users u ON u.id = h.updated_by
		WHERE h.cat_id = $1
		ORDER BY h.seq DESC
	`, catID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]history.Entry, 0)
	for rows.Next() {
		var e history.Entry
		var old sql.NullString

		if err := rows.Scan(
			&e.ID,
			&e.CatID,
			&old,
			&e.NewStatus,
			&e.Notes,
			&e.UpdatedByID,
			&e.UpdatedByName,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}

		if old.Valid {
			v := old.String
			e.OldStatus = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertEntry es el único camino de escritura al ledger y solo se llama
// desde las transacciones de CatsRepo: append-only por construcción.
func insertEntry(ctx context.Context, q execer, e history.Entry) error {
	var old any
	if e.OldStatus != nil {
		old = *e.OldStatus
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO cat_status_history (
			id, cat_id, old_status, new_status, notes, updated_by, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		e.ID,
		e.CatID,
		old,
		e.NewStatus,
		e.Notes,
		e.UpdatedByID,
		e.UpdatedAt,
	)
	return err
}
