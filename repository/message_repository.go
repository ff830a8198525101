package repository

import (
	"context"

	"github.com/akinalp/scribe/models"
)

// MessageRepository stores direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	// GetThread returns messages exchanged between userA and userB in ascending
	// creation order. limit 0 means the whole thread; otherwise the newest
	// limit messages after skipping the newest offset. hasMore reports older
	// messages beyond the page.
	GetThread(ctx context.Context, userA, userB string, limit, offset int) (messages []models.Message, hasMore bool, err error)
	// UnreadCounts maps sender id to the number of unread messages addressed to receiverID.
	UnreadCounts(ctx context.Context, receiverID string) (map[string]int, error)
	// MarkThreadRead flips every unread message from senderID to receiverID and
	// returns how many rows changed.
	MarkThreadRead(ctx context.Context, receiverID, senderID string) (int64, error)
}
