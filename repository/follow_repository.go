package repository

import "context"

// FollowRepository stores the directed follow graph.
type FollowRepository interface {
	// Add reports whether a new edge was created.
	Add(ctx context.Context, followerID, followeeID string) (bool, error)
	// Remove reports whether an edge was deleted.
	Remove(ctx context.Context, followerID, followeeID string) (bool, error)
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	Followers(ctx context.Context, userID string) ([]string, error)
	Following(ctx context.Context, userID string) ([]string, error)
}
