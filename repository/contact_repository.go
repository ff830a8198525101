package repository

import (
	"context"

	"github.com/akinalp/scribe/models"
)

// ContactRepository keeps each user's recency list: the peers they exchanged
// messages with, most recent first, without duplicates.
type ContactRepository interface {
	// Touch moves peerID to the front of userID's recency list, adding it if absent.
	Touch(ctx context.Context, userID, peerID string) error
	// RecentIDs returns userID's recency list, most recent first.
	RecentIDs(ctx context.Context, userID string) ([]string, error)
	// ListPeers returns every user except userID: recency list first, then the
	// rest ordered by name, then id.
	ListPeers(ctx context.Context, userID string) ([]models.User, error)
}
