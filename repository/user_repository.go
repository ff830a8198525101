// Package repository is the data access layer.
//
// Each aggregate has an interface file (X_repository.go) and a sqlite
// implementation (sqlite_X.go). Services depend on the interfaces only;
// constructors accept database.TxQuerier so the same code runs on the pool
// or inside database.WithTx.
package repository

import (
	"context"

	"github.com/akinalp/scribe/models"
)

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// List returns every user ordered by name, then id.
	List(ctx context.Context) ([]models.User, error)
	UpdateName(ctx context.Context, id, name string) error
	Count(ctx context.Context) (int, error)
	ExistsWithRole(ctx context.Context, role models.Role) (bool, error)
}
