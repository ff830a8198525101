package repository

import (
	"context"
	"fmt"

	"github.com/akinalp/scribe/database"
)

type sqliteLikeRepo struct {
	db database.TxQuerier
}

func NewSQLiteLikeRepo(db database.TxQuerier) LikeRepository {
	return &sqliteLikeRepo{db: db}
}

func (r *sqliteLikeRepo) Add(ctx context.Context, articleID, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO article_likes (article_id, user_id) VALUES (?, ?)`, articleID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to like article: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *sqliteLikeRepo) Remove(ctx context.Context, articleID, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM article_likes WHERE article_id = ? AND user_id = ?`, articleID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to unlike article: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *sqliteLikeRepo) Exists(ctx context.Context, articleID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM article_likes WHERE article_id = ? AND user_id = ?)`,
		articleID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}

func (r *sqliteLikeRepo) Count(ctx context.Context, articleID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM article_likes WHERE article_id = ?`, articleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
