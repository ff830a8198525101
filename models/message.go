package models

import (
	"strings"
	"time"
)

// Message is one direct message. Only IsRead ever changes after insert.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Text       string    `json:"text"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SendMessageRequest carries no sender field: the sender is always the
// authenticated caller.
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Text       string `json:"text" validate:"required,max=4000"`
}

func (r *SendMessageRequest) Validate() error {
	r.ReceiverID = strings.TrimSpace(r.ReceiverID)
	r.Text = strings.TrimSpace(r.Text)
	return validateStruct(r)
}

// MessagePage is a slice of a thread in ascending creation order.
type MessagePage struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"has_more"`
}

// ReadResult reports how many rows a mark-read call flipped.
type ReadResult struct {
	Updated int64 `json:"updated"`
}
