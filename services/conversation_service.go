package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/akinalp/scribe/database"
	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/pkg"
	"github.com/akinalp/scribe/pkg/cache"
	"github.com/akinalp/scribe/repository"
	"github.com/akinalp/scribe/ws"
)

// ConversationService runs direct messaging between two users.
//
// Sending is persist first, push second. The message row and both users'
// recency-list updates commit together; only then is the receiver pushed a
// receive-message event and sent a message notification. Nothing is pushed
// for a message that failed to persist, and a missed push never fails the send.
type ConversationService interface {
	SendMessage(ctx context.Context, sender *models.User, req *models.SendMessageRequest) (*models.Message, error)
	// FetchHistory returns the thread between requester and peer in ascending
	// order. limit 0 returns the whole thread.
	FetchHistory(ctx context.Context, requesterID, peerID string, limit, offset int) (*models.MessagePage, error)
	// ListPeers returns the requester's recency list followed by every other user.
	ListPeers(ctx context.Context, requesterID string) ([]models.User, error)
	UnreadCounts(ctx context.Context, requesterID string) (map[string]int, error)
	// MarkThreadRead marks the peer's messages to the requester as read and
	// returns how many changed; a repeated call returns 0.
	MarkThreadRead(ctx context.Context, requesterID, peerID string) (int64, error)
	// RelayTyping forwards a typing indicator unless the same pair relayed one
	// within the debounce window. It reports whether a push was delivered.
	RelayTyping(fromID, toID string) bool
	// ForgetTyping drops debounce state involving userID.
	ForgetTyping(userID string)
	Close()
}

// maxHistoryLimit caps a page so the repository's extra has_more row
// (limit+1) cannot overflow. It is far above any real thread length.
const maxHistoryLimit = math.MaxInt32

type typingKey struct {
	from, to string
}

type conversationService struct {
	// db opens the send transaction. Inside it the repositories are rebuilt
	// on the *sql.Tx, so messageRepo and contactRepo below only serve reads
	// and single-statement writes.
	db          *sql.DB
	messageRepo repository.MessageRepository
	contactRepo repository.ContactRepository
	userRepo    repository.UserRepository
	notifier    NotificationService
	publisher   ws.EventPublisher

	// typing holds one entry per (from, to) pair that was relayed within the
	// debounce window. The entry's TTL is the window itself: while it lives,
	// further typing events for the pair are dropped. SetIfAbsent makes the
	// check-and-claim atomic, so two racing events from the same pair relay
	// at most one push.
	typing *cache.TTLCache[typingKey, struct{}]
}

// NewConversationService needs the raw *sql.DB for the send transaction.
// typingDebounce is the per-pair window in which repeated typing events are dropped.
func NewConversationService(
	db *sql.DB,
	messageRepo repository.MessageRepository,
	contactRepo repository.ContactRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
	publisher ws.EventPublisher,
	typingDebounce time.Duration,
) ConversationService {
	return &conversationService{
		db:          db,
		messageRepo: messageRepo,
		contactRepo: contactRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		publisher:   publisher,
		typing:      cache.New[typingKey, struct{}](typingDebounce, time.Minute),
	}
}

func (s *conversationService) SendMessage(ctx context.Context, sender *models.User, req *models.SendMessageRequest) (*models.Message, error) {
	if sender == nil || sender.ID == "" {
		return nil, fmt.Errorf("%w: sender is required", pkg.ErrBadRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	if req.ReceiverID == sender.ID {
		return nil, fmt.Errorf("%w: cannot send a message to yourself", pkg.ErrBadRequest)
	}

	if _, err := s.userRepo.GetByID(ctx, req.ReceiverID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
	}

	// The message and both recency-list moves commit or fail together. A
	// half-applied send would leave a peer list pointing at a message that
	// does not exist.
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewSQLiteMessageRepo(tx).Create(ctx, msg); err != nil {
			return err
		}

		contacts := repository.NewSQLiteContactRepo(tx)
		if err := contacts.Touch(ctx, msg.SenderID, msg.ReceiverID); err != nil {
			return err
		}
		return contacts.Touch(ctx, msg.ReceiverID, msg.SenderID)
	})
	if err != nil {
		return nil, err
	}

	// Only committed messages are pushed. A false return means the receiver
	// is offline or was just evicted; either way they read it from history.
	s.publisher.Push(msg.ReceiverID, ws.OpReceiveMessage, msg)

	if _, err := s.notifier.NotifyMessage(ctx, msg.ReceiverID, sender); err != nil {
		log.Printf("[conversation] message %s stored but notification failed: %v", msg.ID, err)
	}

	return msg, nil
}

func (s *conversationService) FetchHistory(ctx context.Context, requesterID, peerID string, limit, offset int) (*models.MessagePage, error) {
	if peerID == "" {
		return nil, fmt.Errorf("%w: peer id is required", pkg.ErrBadRequest)
	}
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit and skip must not be negative", pkg.ErrBadRequest)
	}
	limit = min(limit, maxHistoryLimit)

	if _, err := s.userRepo.GetByID(ctx, peerID); err != nil {
		return nil, err
	}

	messages, hasMore, err := s.messageRepo.GetThread(ctx, requesterID, peerID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &models.MessagePage{Messages: messages, HasMore: hasMore}, nil
}

func (s *conversationService) ListPeers(ctx context.Context, requesterID string) ([]models.User, error) {
	return s.contactRepo.ListPeers(ctx, requesterID)
}

func (s *conversationService) UnreadCounts(ctx context.Context, requesterID string) (map[string]int, error) {
	return s.messageRepo.UnreadCounts(ctx, requesterID)
}

func (s *conversationService) MarkThreadRead(ctx context.Context, requesterID, peerID string) (int64, error) {
	if peerID == "" {
		return 0, fmt.Errorf("%w: peer id is required", pkg.ErrBadRequest)
	}
	return s.messageRepo.MarkThreadRead(ctx, requesterID, peerID)
}

func (s *conversationService) RelayTyping(fromID, toID string) bool {
	if fromID == "" || toID == "" || fromID == toID {
		return false
	}
	if !s.typing.SetIfAbsent(typingKey{from: fromID, to: toID}, struct{}{}) {
		return false
	}
	return s.publisher.Push(toID, ws.OpUserTyping, ws.TypingData{From: fromID, To: toID})
}

// ForgetTyping runs from the hub's disconnect hook. Without it a user who
// drops and reconnects inside the window would have their first typing event
// swallowed by a stale entry.
func (s *conversationService) ForgetTyping(userID string) {
	s.typing.DeleteFunc(func(k typingKey) bool {
		return k.from == userID || k.to == userID
	})
}

func (s *conversationService) Close() {
	s.typing.Close()
}
