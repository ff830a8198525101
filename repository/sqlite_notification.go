package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/scribe/database"
	"github.com/akinalp/scribe/models"
)

type sqliteNotificationRepo struct {
	db database.TxQuerier
}

func NewSQLiteNotificationRepo(db database.TxQuerier) NotificationRepository {
	return &sqliteNotificationRepo{db: db}
}

func (r *sqliteNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	n.IsRead = false

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, sender_id, type, message, article_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		n.ID, n.RecipientID, n.SenderID, n.Type, n.Message, n.ArticleID, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *sqliteNotificationRepo) ListByRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT n.id, n.recipient_id, n.sender_id, COALESCE(u.name, ''), n.type, n.message,
		       n.article_id, n.is_read, n.created_at
		FROM notifications n
		LEFT JOIN users u ON u.id = n.sender_id
		WHERE n.recipient_id = ?
		ORDER BY n.created_at DESC, n.rowid DESC`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	list := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.SenderID, &n.SenderName, &n.Type, &n.Message,
			&n.ArticleID, &n.IsRead, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return list, nil
}

func (r *sqliteNotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE recipient_id = ? AND is_read = 0`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
