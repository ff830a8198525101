package repository

import (
	"context"

	"github.com/akinalp/scribe/models"
)

// NotificationRepository stores like and message notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// ListByRecipient returns the recipient's notifications newest first,
	// with SenderName filled in.
	ListByRecipient(ctx context.Context, recipientID string) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}
