package repository

import (
	"context"
	"fmt"

	"github.com/akinalp/scribe/database"
	"github.com/akinalp/scribe/models"
)

type sqliteContactRepo struct {
	db database.TxQuerier
}

func NewSQLiteContactRepo(db database.TxQuerier) ContactRepository {
	return &sqliteContactRepo{db: db}
}

// Touch gives the pair a position above every other entry of the user.
// The subquery and the upsert run as one statement, so two touches for the
// same user cannot read the same maximum.
func (r *sqliteContactRepo) Touch(ctx context.Context, userID, peerID string) error {
	query := `
		INSERT INTO user_recent_contacts (user_id, peer_id, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM user_recent_contacts WHERE user_id = ?))
		ON CONFLICT (user_id, peer_id) DO UPDATE SET position = excluded.position`

	if _, err := r.db.ExecContext(ctx, query, userID, peerID, userID); err != nil {
		return fmt.Errorf("failed to update recent contacts: %w", err)
	}
	return nil
}

func (r *sqliteContactRepo) RecentIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT peer_id FROM user_recent_contacts
		WHERE user_id = ?
		ORDER BY position DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent contacts: %w", err)
	}
	return scanStrings(rows)
}

func (r *sqliteContactRepo) ListPeers(ctx context.Context, userID string) ([]models.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.created_at
		FROM users u
		LEFT JOIN user_recent_contacts c ON c.peer_id = u.id AND c.user_id = ?
		WHERE u.id <> ?
		ORDER BY c.position IS NULL, c.position DESC, u.name COLLATE NOCASE, u.id`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation peers: %w", err)
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
