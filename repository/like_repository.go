package repository

import "context"

// LikeRepository stores article likes as a set of (article, user) pairs.
type LikeRepository interface {
	// Add reports whether the like is new. Liking twice is a no-op the second time.
	Add(ctx context.Context, articleID, userID string) (bool, error)
	// Remove reports whether a like was deleted.
	Remove(ctx context.Context, articleID, userID string) (bool, error)
	Exists(ctx context.Context, articleID, userID string) (bool, error)
	Count(ctx context.Context, articleID string) (int, error)
}
