package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/scribe/database"
	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/pkg"
)

type sqliteArticleRepo struct {
	db database.TxQuerier
}

func NewSQLiteArticleRepo(db database.TxQuerier) ArticleRepository {
	return &sqliteArticleRepo{db: db}
}

// articleSelect includes the like list as a comma-joined column.
const articleSelect = `
	SELECT a.id, a.user_id, a.title, a.description, a.created_at, a.updated_at,
	       COALESCE((SELECT group_concat(l.user_id) FROM article_likes l WHERE l.article_id = a.id), '')
	FROM articles a`

func scanArticle(row interface{ Scan(...any) error }, a *models.Article, extra ...any) error {
	var likes string
	dest := append([]any{&a.ID, &a.UserID, &a.Title, &a.Description, &a.CreatedAt, &a.UpdatedAt, &likes}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	a.Likes = splitIDs(likes)
	return nil
}

func (r *sqliteArticleRepo) Create(ctx context.Context, a *models.Article) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Likes == nil {
		a.Likes = []string{}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO articles (id, user_id, title, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Title, a.Description, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

func (r *sqliteArticleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	a := &models.Article{}
	err := scanArticle(r.db.QueryRowContext(ctx, articleSelect+` WHERE a.id = ?`, id), a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: article not found", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return a, nil
}

func (r *sqliteArticleRepo) ExistsForUser(ctx context.Context, userID, title, description string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM articles WHERE user_id = ? AND (title = ? OR description = ?)
		)`, userID, title, description).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate article: %w", err)
	}
	return exists, nil
}

func (r *sqliteArticleRepo) ListByAuthors(ctx context.Context, userID string, includeAdmins bool) ([]models.Article, error) {
	query := articleSelect + ` WHERE a.user_id = ?`
	if includeAdmins {
		query += ` OR a.user_id IN (SELECT id FROM users WHERE role = 'admin')`
	}
	query += ` ORDER BY a.created_at DESC, a.rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]models.Article, 0)
	for rows.Next() {
		var a models.Article
		if err := scanArticle(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

func (r *sqliteArticleRepo) ListAll(ctx context.Context) ([]models.ArticleWithAuthor, error) {
	query := `
		SELECT a.id, a.user_id, a.title, a.description, a.created_at, a.updated_at,
		       COALESCE((SELECT group_concat(l.user_id) FROM article_likes l WHERE l.article_id = a.id), ''),
		       u.name, u.email
		FROM articles a
		JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC, a.rowid DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list all articles: %w", err)
	}
	defer rows.Close()

	feed := make([]models.ArticleWithAuthor, 0)
	for rows.Next() {
		var item models.ArticleWithAuthor
		if err := scanArticle(rows, &item.Article, &item.AuthorName, &item.AuthorEmail); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		feed = append(feed, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return feed, nil
}

func (r *sqliteArticleRepo) IDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM articles WHERE user_id = ? ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list article ids: %w", err)
	}
	return scanStrings(rows)
}

func (r *sqliteArticleRepo) Update(ctx context.Context, a *models.Article) error {
	a.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE articles SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		a.Title, a.Description, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	return requireAffected(result, "article")
}

// Delete removes the article; versions and likes go with it through ON DELETE CASCADE.
func (r *sqliteArticleRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return requireAffected(result, "article")
}

func (r *sqliteArticleRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (r *sqliteArticleRepo) CreateVersion(ctx context.Context, v *models.ArticleVersion) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO article_versions (id, article_id, description, created_at) VALUES (?, ?, ?, ?)`,
		v.ID, v.ArticleID, v.Description, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create article version: %w", err)
	}
	return nil
}

func (r *sqliteArticleRepo) ListVersions(ctx context.Context, articleID string) ([]models.ArticleVersion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, article_id, description, created_at
		FROM article_versions
		WHERE article_id = ?
		ORDER BY created_at DESC, rowid DESC`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list article versions: %w", err)
	}
	defer rows.Close()

	versions := make([]models.ArticleVersion, 0)
	for rows.Next() {
		var v models.ArticleVersion
		if err := rows.Scan(&v.ID, &v.ArticleID, &v.Description, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate article versions: %w", err)
	}
	return versions, nil
}

func (r *sqliteArticleRepo) VersionExists(ctx context.Context, articleID, description string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM article_versions WHERE article_id = ? AND description = ?)`,
		articleID, description,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check article version: %w", err)
	}
	return exists, nil
}
