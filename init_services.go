package main

import (
	"database/sql"
	"time"

	"github.com/akinalp/scribe/config"
	"github.com/akinalp/scribe/pkg/ratelimit"
	"github.com/akinalp/scribe/services"
	"github.com/akinalp/scribe/ws"
)

const sessionSweepInterval = time.Hour

// Services groups every service instance.
type Services struct {
	Auth           services.AuthService
	Notification   services.NotificationService
	Conversation   services.ConversationService
	Article        services.ArticleService
	User           services.UserService
	AI             services.AIService
	SessionJanitor services.SessionJanitor
}

// RateLimiters groups the in-memory limiters shared by the handlers.
type RateLimiters struct {
	Login   *ratelimit.LoginRateLimiter
	Message *ratelimit.MessageRateLimiter
}

// initServices builds the services. The notification service comes before
// the conversation and article services, which both notify.
func initServices(db *sql.DB, repos *Repositories, hub ws.EventPublisher, cfg *config.Config) (*Services, *RateLimiters) {
	authService := services.NewAuthService(
		repos.User,
		repos.Session,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	notificationService := services.NewNotificationService(repos.Notification, hub)

	conversationService := services.NewConversationService(
		db,
		repos.Message,
		repos.Contact,
		repos.User,
		notificationService,
		hub,
		cfg.Realtime.TypingDebounce,
	)

	svcs := &Services{
		Auth:           authService,
		Notification:   notificationService,
		Conversation:   conversationService,
		Article:        services.NewArticleService(db, repos.Article, repos.Like, notificationService),
		User:           services.NewUserService(repos.User, repos.Follow, repos.Article, repos.Contact, authService),
		AI:             services.NewAIService(cfg.AI, nil),
		SessionJanitor: services.NewSessionJanitor(repos.Session, sessionSweepInterval),
	}

	limiters := &RateLimiters{
		Login: ratelimit.NewLoginRateLimiter(cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow),
		Message: ratelimit.NewMessageRateLimiter(
			cfg.RateLimit.MessageLimit,
			cfg.RateLimit.MessageWindow,
			cfg.RateLimit.MessageCooldown,
		),
	}

	return svcs, limiters
}
