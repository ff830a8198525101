package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/ws"
)

func TestNotification_PersistThenPush(t *testing.T) {
	f := newFixture(t)
	alice := createUser(t, f.users, "alice", models.RoleUser)
	bob := createUser(t, f.users, "bob", models.RoleUser)
	f.setOnline(alice.ID)
	ctx := context.Background()

	n, err := f.notifications.NotifyMessage(ctx, alice.ID, bob)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.NotEmpty(t, n.ID, "pushed notifications are already stored")

	pushes := f.publisher.pushesFor(alice.ID, ws.OpNotification)
	require.Len(t, pushes, 1)
	assert.Equal(t, n.ID, pushes[0].Data.(*models.Notification).ID)
}

func TestNotification_SelfIsNoop(t *testing.T) {
	f := newFixture(t)
	alice := createUser(t, f.users, "alice", models.RoleUser)

	n, err := f.notifications.NotifyMessage(context.Background(), alice.ID, alice)
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestNotification_ListAndMarkAllRead(t *testing.T) {
	f := newFixture(t)
	alice := createUser(t, f.users, "alice", models.RoleUser)
	bob := createUser(t, f.users, "bob", models.RoleUser)
	ctx := context.Background()

	_, err := f.notifications.NotifyMessage(ctx, alice.ID, bob)
	require.NoError(t, err)
	_, err = f.notifications.NotifyLike(ctx, alice.ID, bob, &models.Article{ID: createArticle(t, f, alice, "Go", "v1").ID, Title: "Go"})
	require.NoError(t, err)

	list, err := f.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, 2, list.UnreadCount)
	assert.Equal(t, models.NotificationLike, list.Notifications[0].Type, "newest first")
	assert.Equal(t, "bob", list.Notifications[0].SenderName)

	n, err := f.notifications.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err = f.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, list.HasUnread)
	assert.Equal(t, 0, list.UnreadCount)

	n, err = f.notifications.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
