package models

import "time"

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationMessage NotificationType = "message"
)

// Notification is created by the like and message flows and is only ever
// changed by the bulk mark-all-read.
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	SenderID    string           `json:"sender_id"`
	SenderName  string           `json:"sender_name,omitempty"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	ArticleID   *string          `json:"article_id,omitempty"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationList is the notification feed plus the badge state.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	HasUnread     bool           `json:"has_unread"`
	UnreadCount   int            `json:"unread_count"`
}
