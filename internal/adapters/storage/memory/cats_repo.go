package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"cat-tnr-registry/internal/domain/cats"
	"cat-tnr-registry/internal/domain/history"
)

// NameResolver resuelve el nombre visible de una cuenta.
// Lo implementa users.Service; puede ser nil en tests.
type NameResolver interface {
	DisplayName(ctx context.Context, id string) (string, error)
}

// CatRepo guarda gatos y su ledger en el mismo store bajo un mismo lock:
// la atomicidad fila-del-gato + entrada-de-historial sale gratis.
// Implementa cats.Repository y history.Repository.
type CatRepo struct {
	mu      sync.RWMutex
	byID    map[string]cats.Cat
	entries map[string][]history.Entry // por catID, orden de append (más viejo primero)
	names   NameResolver
}

func NewCatRepo(names NameResolver) *CatRepo {
	return &CatRepo{
		byID:    make(map[string]cats.Cat),
		entries: make(map[string][]history.Entry),
		names:   names,
	}
}

func (r *CatRepo) Create(ctx context.Context, c cats.Cat, first history.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("cat id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("cat already exists")
	}

	c.CreatedByName = r.resolveName(ctx, c.CreatedByID)
	c.UpdatedByName = r.resolveName(ctx, c.UpdatedByID)
	first.UpdatedByName = r.resolveName(ctx, first.UpdatedByID)

	r.byID[c.ID] = c
	r.entries[c.ID] = append(r.entries[c.ID], first)
	return nil
}

func (r *CatRepo) GetByID(ctx context.Context, id string) (cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return cats.Cat{}, cats.ErrNotFound
	}
	return c, nil
}

func (r *CatRepo) List(ctx context.Context) ([]cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cats.Cat, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}

	// alta más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CatRepo) ChangeStatus(ctx context.Context, catID string, e history.Entry) (cats.Cat, history.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[catID]
	if !ok {
		return cats.Cat{}, history.Entry{}, cats.ErrNotFound
	}
	if string(c.Status) == e.NewStatus {
		return cats.Cat{}, history.Entry{}, cats.ErrSameStatus
	}

	old := string(c.Status)
	e.OldStatus = &old
	e.UpdatedByName = r.resolveName(ctx, e.UpdatedByID)

	c.Status = cats.Status(e.NewStatus)
	c.UpdatedByID = e.UpdatedByID
	c.UpdatedByName = e.UpdatedByName
	c.UpdatedAt = e.UpdatedAt

	// mismo lock = mismo "commit": fila y ledger nunca divergen
	r.byID[catID] = c
	r.entries[catID] = append(r.entries[catID], e)

	return c, e, nil
}

func (r *CatRepo) CountByStatus(ctx context.Context) (map[cats.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[cats.Status]int)
	for _, c := range r.byID {
		out[c.Status]++
	}
	return out, nil
}

// ListByCat implementa history.Repository: más reciente primero.
func (r *CatRepo) ListByCat(ctx context.Context, catID string) ([]history.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.entries[catID]
	out := make([]history.Entry, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

func (r *CatRepo) resolveName(ctx context.Context, userID string) string {
	if r.names == nil {
		return ""
	}
	name, err := r.names.DisplayName(ctx, userID)
	if err != nil {
		return ""
	}
	return name
}
