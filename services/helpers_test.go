package services

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/scribe/database"
	"github.com/akinalp/scribe/models"
	"github.com/akinalp/scribe/repository"
	"github.com/akinalp/scribe/ws"
)

type push struct {
	UserID string
	Op     string
	Data   any
}

// recordingPublisher is a ws.EventPublisher that records pushes and treats
// the users in online as connected.
type recordingPublisher struct {
	mu     sync.Mutex
	online map[string]bool
	pushes []push
}

var _ ws.EventPublisher = (*recordingPublisher)(nil)

func newRecordingPublisher(online ...string) *recordingPublisher {
	p := &recordingPublisher{online: make(map[string]bool)}
	for _, id := range online {
		p.online[id] = true
	}
	return p
}

func (p *recordingPublisher) Push(userID, op string, data any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online[userID] {
		return false
	}
	p.pushes = append(p.pushes, push{UserID: userID, Op: op, Data: data})
	return true
}

func (p *recordingPublisher) BroadcastOnlineUsers() {}

func (p *recordingPublisher) OnlineUserIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	return ids
}

func (p *recordingPublisher) pushesFor(userID, op string) []push {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []push
	for _, ev := range p.pushes {
		if ev.UserID == userID && ev.Op == op {
			out = append(out, ev)
		}
	}
	return out
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.Conn
}

func createUser(t *testing.T, repo repository.UserRepository, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

// fixture wires every service on one fresh database.
type fixture struct {
	db        *sql.DB
	users     repository.UserRepository
	messages  repository.MessageRepository
	publisher *recordingPublisher

	notifications NotificationService
	conversation  ConversationService
	articles      ArticleService
}

func newFixture(t *testing.T, online ...string) *fixture {
	t.Helper()
	db := newTestDB(t)
	pub := newRecordingPublisher(online...)

	users := repository.NewSQLiteUserRepo(db)
	messages := repository.NewSQLiteMessageRepo(db)
	notifications := NewNotificationService(repository.NewSQLiteNotificationRepo(db), pub)
	conversation := NewConversationService(
		db,
		messages,
		repository.NewSQLiteContactRepo(db),
		users,
		notifications,
		pub,
		defaultTestDebounce,
	)
	t.Cleanup(conversation.Close)

	return &fixture{
		db:            db,
		users:         users,
		messages:      messages,
		publisher:     pub,
		notifications: notifications,
		conversation:  conversation,
		articles: NewArticleService(
			db,
			repository.NewSQLiteArticleRepo(db),
			repository.NewSQLiteLikeRepo(db),
			notifications,
		),
	}
}

func (f *fixture) setOnline(userIDs ...string) {
	f.publisher.mu.Lock()
	defer f.publisher.mu.Unlock()
	for _, id := range userIDs {
		f.publisher.online[id] = true
	}
}

// failInserts makes every INSERT into table abort, simulating a store that
// rejects writes.
func failInserts(t *testing.T, f *fixture, table string) {
	t.Helper()
	_, err := f.db.Exec(fmt.Sprintf(
		`CREATE TRIGGER fail_%[1]s BEFORE INSERT ON %[1]s BEGIN SELECT RAISE(ABORT, 'write rejected'); END`,
		table,
	))
	require.NoError(t, err)
}
