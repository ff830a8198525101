package repository

import (
	"context"
	"fmt"

	"github.com/akinalp/scribe/database"
)

type sqliteFollowRepo struct {
	db database.TxQuerier
}

func NewSQLiteFollowRepo(db database.TxQuerier) FollowRepository {
	return &sqliteFollowRepo{db: db}
}

func (r *sqliteFollowRepo) Add(ctx context.Context, followerID, followeeID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO follows (follower_id, followee_id) VALUES (?, ?)`, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to follow user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *sqliteFollowRepo) Remove(ctx context.Context, followerID, followeeID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to unfollow user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *sqliteFollowRepo) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND followee_id = ?)`,
		followerID, followeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

func (r *sqliteFollowRepo) Followers(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT follower_id FROM follows WHERE followee_id = ? ORDER BY created_at, follower_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return scanStrings(rows)
}

func (r *sqliteFollowRepo) Following(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT followee_id FROM follows WHERE follower_id = ? ORDER BY created_at, followee_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return scanStrings(rows)
}
