package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/pkg"
	"github.com/akinalp/scribe/repository"
)

func newTestUserService(t *testing.T) (UserService, AuthService, *fixture) {
	t.Helper()
	f := newFixture(t)
	auth := NewAuthService(f.users, repository.NewSQLiteSessionRepo(f.db), testSecret, 15, 7)
	svc := NewUserService(
		f.users,
		repository.NewSQLiteFollowRepo(f.db),
		repository.NewSQLiteArticleRepo(f.db),
		repository.NewSQLiteContactRepo(f.db),
		auth,
	)
	return svc, auth, f
}

func TestUser_ToggleFollow(t *testing.T) {
	svc, _, f := newTestUserService(t)
	alice := createUser(t, f.users, "alice", models.RoleUser)
	bob := createUser(t, f.users, "bob", models.RoleUser)
	ctx := context.Background()

	res, err := svc.ToggleFollow(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Following)

	profile, err := svc.GetProfile(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, profile.Followers)
	assert.Empty(t, profile.Following)

	res, err = svc.ToggleFollow(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Following)

	profile, err = svc.GetProfile(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Followers)

	_, err = svc.ToggleFollow(ctx, alice, alice.ID)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = svc.ToggleFollow(ctx, alice, "missing")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestUser_ProfileListsArticles(t *testing.T) {
	svc, _, f := newTestUserService(t)
	alice := createUser(t, f.users, "alice", models.RoleUser)
	a := createArticle(t, f, alice, "Go", "v1")

	profile, err := svc.GetProfile(context.Background(), alice, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, profile.Articles)
	assert.Equal(t, "alice", profile.Name)

	_, err = svc.GetProfile(context.Background(), alice, "missing")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestUser_OwnProfileIncludesRecentContacts(t *testing.T) {
	svc, _, f := newTestUserService(t)
	alice := createUser(t, f.users, "alice", models.RoleUser)
	bob := createUser(t, f.users, "bob", models.RoleUser)
	carol := createUser(t, f.users, "carol", models.RoleUser)
	ctx := context.Background()

	send(t, f, alice, bob, "hi bob")
	send(t, f, carol, alice, "hi alice")

	own, err := svc.GetProfile(ctx, alice, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{carol.ID, bob.ID}, own.RecentContacts)

	other, err := svc.GetProfile(ctx, bob, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, other.RecentContacts)
}

func TestUser_UpdateProfileIssuesFreshToken(t *testing.T) {
	svc, auth, f := newTestUserService(t)
	alice := createUser(t, f.users, "alice", models.RoleUser)
	ctx := context.Background()

	result, err := svc.UpdateProfile(ctx, alice, &models.UpdateProfileRequest{Name: "  Alice L.  "})
	require.NoError(t, err)
	assert.Equal(t, "Alice L.", result.User.Name)

	claims, err := auth.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Alice L.", claims.Name)

	_, err = svc.UpdateProfile(ctx, alice, &models.UpdateProfileRequest{Name: " "})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}
