// Package config loads the server configuration from the environment.
//
// Values come from real environment variables first and from a .env file in
// the working directory second (godotenv never overrides an existing
// variable). Every setting except JWT_SECRET has a development default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the root configuration passed to main's wiring functions.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Realtime  RealtimeConfig
	RateLimit RateLimitConfig
	AI        AIConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	CORSOrigins  []string
	CookieSecure bool // Secure flag on the access_token cookie; enable behind TLS
}

type DatabaseConfig struct {
	Path string // sqlite file, e.g. ./data/scribe.db
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // days
}

// AdminConfig is the account seeded on first start when no admin exists.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

type RealtimeConfig struct {
	TypingDebounce time.Duration
}

type RateLimitConfig struct {
	MessageLimit    int
	MessageWindow   time.Duration
	MessageCooldown time.Duration
	LoginLimit      int
	LoginWindow     time.Duration
}

// AIConfig points at the text-generation endpoint behind /api/ai/describe.
// An empty APIKey disables the endpoint.
type AIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Load reads the configuration. It fails on malformed numbers and on a
// missing JWT_SECRET.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getInt("SERVER_PORT", 9090)
	if err != nil {
		return nil, err
	}
	accessExpiry, err := getInt("JWT_ACCESS_EXPIRY_MINUTES", 1440)
	if err != nil {
		return nil, err
	}
	refreshExpiry, err := getInt("JWT_REFRESH_EXPIRY_DAYS", 7)
	if err != nil {
		return nil, err
	}
	typingMs, err := getInt("TYPING_DEBOUNCE_MS", 1500)
	if err != nil {
		return nil, err
	}
	msgLimit, err := getInt("MESSAGE_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	msgWindow, err := getInt("MESSAGE_RATE_WINDOW_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	msgCooldown, err := getInt("MESSAGE_RATE_COOLDOWN_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	loginLimit, err := getInt("LOGIN_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	loginWindow, err := getInt("LOGIN_RATE_WINDOW_MINUTES", 5)
	if err != nil {
		return nil, err
	}

	cookieSecure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         port,
			CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
			CookieSecure: cookieSecure,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/scribe.db"),
		},
		JWT: JWTConfig{
			Secret:             jwtSecret,
			AccessTokenExpiry:  accessExpiry,
			RefreshTokenExpiry: refreshExpiry,
		},
		Admin: AdminConfig{
			Name:     getEnv("ADMIN_NAME", "Admin"),
			Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		Realtime: RealtimeConfig{
			TypingDebounce: time.Duration(typingMs) * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			MessageLimit:    msgLimit,
			MessageWindow:   time.Duration(msgWindow) * time.Second,
			MessageCooldown: time.Duration(msgCooldown) * time.Second,
			LoginLimit:      loginLimit,
			LoginWindow:     time.Duration(loginWindow) * time.Minute,
		},
		AI: AIConfig{
			APIKey:  getEnv("AI_API_KEY", ""),
			Model:   getEnv("AI_MODEL", "gemini-1.5-flash"),
			BaseURL: getEnv("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		},
	}

	return cfg, nil
}

// Addr is the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
