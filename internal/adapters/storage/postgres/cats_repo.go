package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cat-tnr-registry/internal/domain/cats"
	"cat-tnr-registry/internal/domain/history"
)

type CatsRepo struct {
	db *sql.DB
}

func NewCatsRepo(db *sql.DB) *CatsRepo {
	return &CatsRepo{db: db}
}

// columnas + joins para resolver display names en la misma query
const selectCat = `
	SELECT
		c.id, c.name, c.gender, c.status,
		c.estimated_age, c.description, c.microchip_info,
		c.latitude, c.longitude, c.address, c.image_url,
		c.created_by, COALESCE(cu.name, ''),
		c.updated_by, COALESCE(uu.name, ''),
		c.date_added, c.created_at, c.updated_at
	FROM cats c
	LEFT JOIN users cu ON cu.id = c.created_by
	LEFT JOIN users uu ON uu.id = c.updated_by
`

// Create inserta el gato y su primera entrada de historial en una
// transacción: commitean juntas o ninguna.
func (r *CatsRepo) Create(ctx context.Context, c cats.Cat, first history.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cats (
			id, name, gender, status,
			estimated_age, description, microchip_info,
			latitude, longitude, address, image_url,
			created_by, updated_by,
			date_added, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		c.ID,
		c.Name,
		string(c.Gender),
		string(c.Status),
		c.EstimatedAge,
		c.Description,
		c.MicrochipInfo,
		c.Latitude,
		c.Longitude,
		c.Address,
		c.ImageURL,
		c.CreatedByID,
		c.UpdatedByID,
		c.DateAdded,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertEntry(ctx, tx, first); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *CatsRepo) GetByID(ctx context.Context, id string) (cats.Cat, error) {
	row := r.db.QueryRowContext(ctx, selectCat+` WHERE c.id = $1`, id)

	c, err := scanCat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cats.Cat{}, cats.ErrNotFound
		}
		return cats.Cat{}, err
	}
	return c, nil
}

func (r *CatsRepo) List(ctx context.Context) ([]cats.Cat, error) {
	rows, err := r.db.QueryContext(ctx, selectCat+` ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cats.Cat, 0)
	for rows.Next() {
		c, err := scanCat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ChangeStatus hace el par actualización-de-fila + append-de-ledger en una
// transacción con lock de fila (SELECT ... FOR UPDATE). Eso serializa
// cambios concurrentes sobre el mismo gato: sin lost updates y la cadena
// old/new del historial siempre encadena con el estado final.
func (r *CatsRepo) ChangeStatus(ctx context.Context, catID string, e history.Entry) (cats.Cat, history.Entry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return cats.Cat{}, history.Entry{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM cats WHERE id = $1 FOR UPDATE`, catID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cats.Cat{}, history.Entry{}, cats.ErrNotFound
		}
		return cats.Cat{}, history.Entry{}, err
	}

	// el no-op se chequea adentro del lock para que valga bajo concurrencia
	if current == e.NewStatus {
		return cats.Cat{}, history.Entry{}, cats.ErrSameStatus
	}
	e.OldStatus = &current

	_, err = tx.ExecContext(ctx, `
		UPDATE cats
		SET status = $2, updated_by = $3, updated_at = $4
		WHERE id = $1
	`, catID, e.NewStatus, e.UpdatedByID, e.UpdatedAt)
	if err != nil {
		return cats.Cat{}, history.Entry{}, err
	}

	if err := insertEntry(ctx, tx, e); err != nil {
		return cats.Cat{}, history.Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		return cats.Cat{}, history.Entry{}, err
	}

	c, err := r.GetByID(ctx, catID)
	if err != nil {
		return cats.Cat{}, history.Entry{}, err
	}
	e.UpdatedByName = c.UpdatedByName
	return c, e, nil
}

func (r *CatsRepo) CountByStatus(ctx context.Context) (map[cats.Status]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM cats GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[cats.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[cats.Status(status)] = n
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCat(row rowScanner) (cats.Cat, error) {
	var c cats.Cat
	var gender, status string

	err := row.Scan(
		&c.ID,
		&c.Name,
		&gender,
		&status,
		&c.EstimatedAge,
		&c.Description,
		&c.MicrochipInfo,
		&c.Latitude,
		&c.Longitude,
		&c.Address,
		&c.ImageURL,
		&c.CreatedByID,
		&c.CreatedByName,
		&c.UpdatedByID,
		&c.UpdatedByName,
		&c.DateAdded,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return cats.Cat{}, err
	}

	c.Gender = cats.Gender(gender)
	c.Status = cats.Status(status)
	return c, nil
}
