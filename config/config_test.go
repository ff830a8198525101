package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, 1440, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, 1500*time.Millisecond, cfg.Realtime.TypingDebounce)
	assert.Equal(t, "admin@example.com", cfg.Admin.Email)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "8088")
	t.Setenv("TYPING_DEBOUNCE_MS", "250")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Realtime.TypingDebounce)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "nope")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
}
