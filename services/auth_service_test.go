package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/scribe/config"
	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/pkg"
	"github.com/akinalp/scribe/repository"
)

const testSecret = "test-secret"

func newTestAuth(t *testing.T) (AuthService, repository.UserRepository) {
	t.Helper()
	db := newTestDB(t)
	users := repository.NewSQLiteUserRepo(db)
	return NewAuthService(users, repository.NewSQLiteSessionRepo(db), testSecret, 15, 7), users
}

func TestAuth_RegisterLoginAndValidate(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	tokens, err := auth.Register(ctx, &models.CreateUserRequest{
		Name:     "Alice",
		Email:    "  Alice@Example.com ",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", tokens.User.Email)
	assert.Equal(t, models.RoleUser, tokens.User.Role)
	assert.NotEmpty(t, tokens.RefreshToken)

	claims, err := auth.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tokens.User.ID, claims.UserID)

	_, err = auth.Register(ctx, &models.CreateUserRequest{Name: "Dup", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)

	_, err = auth.Login(ctx, &models.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	_, err = auth.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	loggedIn, err := auth.Login(ctx, &models.LoginRequest{Email: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, tokens.User.ID, loggedIn.User.ID)
}

func TestAuth_RegisterValidation(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.Register(context.Background(), &models.CreateUserRequest{Name: "x", Email: "not-an-email", Password: "secret123"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = auth.Register(context.Background(), &models.CreateUserRequest{Name: "x", Email: "x@example.com", Password: "123"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestAuth_RefreshRotatesAndLogoutRevokes(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	tokens, err := auth.Register(ctx, &models.CreateUserRequest{Name: "Bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := auth.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)

	_, err = auth.RefreshToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized, "a rotated token is spent")

	require.NoError(t, auth.Logout(ctx, refreshed.RefreshToken))
	_, err = auth.RefreshToken(ctx, refreshed.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	assert.NoError(t, auth.Logout(ctx, "unknown"))
}

func TestAuth_RejectsForeignTokens(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.ValidateAccessToken("garbage")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.TokenClaims{
		UserID: "someone",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("another-secret"))
	require.NoError(t, err)

	_, err = auth.ValidateAccessToken(forged)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestAuth_EnsureAdminOnlyOnce(t *testing.T) {
	auth, users := newTestAuth(t)
	ctx := context.Background()
	admin := config.AdminConfig{Name: "Admin", Email: "admin@example.com", Password: "admin123"}

	require.NoError(t, auth.EnsureAdmin(ctx, admin))
	require.NoError(t, auth.EnsureAdmin(ctx, admin))

	list, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsAdmin())

	tokens, err := auth.Login(ctx, &models.LoginRequest{Email: admin.Email, Password: admin.Password})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, tokens.User.Role)
}
