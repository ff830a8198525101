package main

import (
	"database/sql"

	"github.com/akinalp/scribe/repository"
)

// Repositories groups every repository so the wiring functions take one
// parameter instead of ten.
type Repositories struct {
	User         repository.UserRepository
	Session      repository.SessionRepository
	Contact      repository.ContactRepository
	Message      repository.MessageRepository
	Notification repository.NotificationRepository
	Follow       repository.FollowRepository
	Article      repository.ArticleRepository
	Like         repository.LikeRepository
}

// initRepositories builds the sqlite repositories on the shared pool.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:         repository.NewSQLiteUserRepo(conn),
		Session:      repository.NewSQLiteSessionRepo(conn),
		Contact:      repository.NewSQLiteContactRepo(conn),
		Message:      repository.NewSQLiteMessageRepo(conn),
		Notification: repository.NewSQLiteNotificationRepo(conn),
		Follow:       repository.NewSQLiteFollowRepo(conn),
		Article:      repository.NewSQLiteArticleRepo(conn),
		Like:         repository.NewSQLiteLikeRepo(conn),
	}
}
