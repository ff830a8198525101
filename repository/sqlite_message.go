package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/scribe/database"
	"github.com/akinalp/scribe/models"
)

type sqliteMessageRepo struct {
	db database.TxQuerier
}

func NewSQLiteMessageRepo(db database.TxQuerier) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

func (r *sqliteMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	msg.IsRead = false

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, text, is_read, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Text, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetThread reads newest-first so LIMIT/OFFSET page from the recent end,
// then reverses for display. rowid breaks created_at ties in insert order.
func (r *sqliteMessageRepo) GetThread(ctx context.Context, userA, userB string, limit, offset int) ([]models.Message, bool, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, is_read, created_at, updated_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at DESC, rowid DESC`
	args := []any{userA, userB, userB, userA}

	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit+1, offset)
	} else if offset > 0 {
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get thread: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, false, err
	}

	hasMore := false
	if limit > 0 && len(messages) > limit {
		hasMore = true
		messages = messages[:limit]
	}

	slices.Reverse(messages)
	return messages, hasMore, nil
}

func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.IsRead, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

func (r *sqliteMessageRepo) UnreadCounts(ctx context.Context, receiverID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sender_id, COUNT(*)
		FROM messages
		WHERE receiver_id = ? AND is_read = 0
		GROUP BY sender_id`, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var senderID string
		var count int
		if err := rows.Scan(&senderID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan unread count: %w", err)
		}
		counts[senderID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate unread counts: %w", err)
	}
	return counts, nil
}

func (r *sqliteMessageRepo) MarkThreadRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1, updated_at = ?
		WHERE sender_id = ? AND receiver_id = ? AND is_read = 0`,
		time.Now().UTC(), senderID, receiverID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark thread read: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
