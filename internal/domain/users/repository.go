package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)

	// List devuelve todas las cuentas, alta más reciente primero (admin).
	List(ctx context.Context) ([]User, error)

	SetStatus(ctx context.Context, id string, status Status, at time.Time) error
}
