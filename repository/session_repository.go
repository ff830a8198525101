package repository

import (
	"context"

	"github.com/akinalp/scribe/models"
)

// SessionRepository stores refresh-token sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
