package repository

import (
	"context"

	"github.com/akinalp/scribe/models"
)

// ArticleRepository stores articles and their version history.
// Returned articles carry their like list.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	// ExistsForUser reports whether userID already owns an article with this
	// title or this description.
	ExistsForUser(ctx context.Context, userID, title, description string) (bool, error)
	// ListByAuthors returns articles written by userID or, when includeAdmins
	// is set, by any admin. Newest first.
	ListByAuthors(ctx context.Context, userID string, includeAdmins bool) ([]models.Article, error)
	ListAll(ctx context.Context) ([]models.ArticleWithAuthor, error)
	IDsByUser(ctx context.Context, userID string) ([]string, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)

	CreateVersion(ctx context.Context, version *models.ArticleVersion) error
	// ListVersions returns every stored description of an article, newest first.
	ListVersions(ctx context.Context, articleID string) ([]models.ArticleVersion, error)
	VersionExists(ctx context.Context, articleID, description string) (bool, error)
}
