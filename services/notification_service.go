package services

import (
	"context"
	"fmt"

	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/repository"
	"github.com/akinalp/scribe/ws"
)

// NotificationService records like and message notifications and pushes
// each one to its recipient when they are online.
//
// The record is always written before the push. A push that misses an
// offline user is not an error: the notification shows up in the next List.
type NotificationService interface {
	// NotifyLike is a no-op returning (nil, nil) when the actor liked their own article.
	NotifyLike(ctx context.Context, recipientID string, actor *models.User, article *models.Article) (*models.Notification, error)
	// NotifyMessage is a no-op returning (nil, nil) when recipient and actor are the same.
	NotifyMessage(ctx context.Context, recipientID string, actor *models.User) (*models.Notification, error)
	List(ctx context.Context, userID string) (*models.NotificationList, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	notifRepo repository.NotificationRepository
	publisher ws.EventPublisher
}

func NewNotificationService(notifRepo repository.NotificationRepository, publisher ws.EventPublisher) NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		publisher: publisher,
	}
}

func (s *notificationService) NotifyLike(ctx context.Context, recipientID string, actor *models.User, article *models.Article) (*models.Notification, error) {
	if recipientID == actor.ID {
		return nil, nil
	}

	articleID := article.ID
	n := &models.Notification{
		RecipientID: recipientID,
		SenderID:    actor.ID,
		SenderName:  actor.Name,
		Type:        models.NotificationLike,
		Message:     fmt.Sprintf("%s liked your article %s", actor.DisplayName(), article.Title),
		ArticleID:   &articleID,
	}
	return s.createAndPush(ctx, n)
}

func (s *notificationService) NotifyMessage(ctx context.Context, recipientID string, actor *models.User) (*models.Notification, error) {
	if recipientID == actor.ID {
		return nil, nil
	}

	n := &models.Notification{
		RecipientID: recipientID,
		SenderID:    actor.ID,
		SenderName:  actor.Name,
		Type:        models.NotificationMessage,
		Message:     fmt.Sprintf("%s messaged you", actor.DisplayName()),
	}
	return s.createAndPush(ctx, n)
}

func (s *notificationService) createAndPush(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.publisher.Push(n.RecipientID, ws.OpNotification, n)
	return n, nil
}

func (s *notificationService) List(ctx context.Context, userID string) (*models.NotificationList, error) {
	items, err := s.notifRepo.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}

	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}

	return &models.NotificationList{
		Notifications: items,
		HasUnread:     unread > 0,
		UnreadCount:   unread,
	}, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notifRepo.MarkAllRead(ctx, userID)
}
