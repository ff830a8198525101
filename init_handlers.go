package main

import (
	"github.com/akinalp/scribe/config"
	"github.com/akinalp/scribe/handlers"
	"github.com/akinalp/scribe/ws"
)

// Handlers groups every HTTP handler.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Article      *handlers.ArticleHandler
	Message      *handlers.MessageHandler
	Notification *handlers.NotificationHandler
	AI           *handlers.AIHandler
	Stats        *handlers.StatsHandler
	WS           *ws.Handler
}

func initHandlers(svcs *Services, repos *Repositories, limiters *RateLimiters, hub *ws.Hub, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:         handlers.NewAuthHandler(svcs.Auth, limiters.Login, cfg.Server.CookieSecure),
		User:         handlers.NewUserHandler(svcs.User),
		Article:      handlers.NewArticleHandler(svcs.Article),
		Message:      handlers.NewMessageHandler(svcs.Conversation, limiters.Message),
		Notification: handlers.NewNotificationHandler(svcs.Notification),
		AI:           handlers.NewAIHandler(svcs.AI),
		Stats:        handlers.NewStatsHandler(repos.User, repos.Article, hub),
		WS:           ws.NewHandler(hub, svcs.Auth, repos.User, cfg.Server.CORSOrigins),
	}
}
