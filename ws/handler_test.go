package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/scribe/models"
)

type stubValidator map[string]string

func (v stubValidator) ValidateAccessToken(token string) (*models.TokenClaims, error) {
	userID, ok := v[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &models.TokenClaims{UserID: userID}, nil
}

// stubUsers holds the ids of accounts that still exist.
type stubUsers map[string]bool

func (u stubUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if !u[id] {
		return nil, errors.New("not found")
	}
	return &models.User{ID: id}, nil
}

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	handler := NewHandler(
		hub,
		stubValidator{"tok-alice": "alice", "tok-bob": "bob", "tok-ghost": "ghost"},
		stubUsers{"alice": true, "bob": true},
		nil,
	)
	srv := httptest.NewServer(http.HandlerFunc(handler.HandleConnection))
	t.Cleanup(func() {
		hub.Shutdown()
		srv.Close()
	})
	return hub, srv
}

func wsURL(srv *httptest.Server, token string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn, op string) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var e Event
		require.NoError(t, conn.ReadJSON(&e))
		if e.Op == op {
			return e
		}
	}
}

func TestHandler_RejectsMissingOrInvalidToken(t *testing.T) {
	hub, srv := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "nope"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.Empty(t, hub.OnlineUserIDs())
}

func TestHandler_RejectsTokenOfDeletedUser(t *testing.T) {
	hub, srv := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "tok-ghost"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, ok := hub.Lookup("ghost")
	assert.False(t, ok)
}

func TestHandler_ConnectRegistersAndBroadcasts(t *testing.T) {
	hub, srv := newTestServer(t)

	alice := dial(t, srv, "tok-alice")
	e := readEvent(t, alice, OpOnlineUsers)
	assert.Equal(t, []any{"alice"}, e.Data)

	dial(t, srv, "tok-bob")
	e = readEvent(t, alice, OpOnlineUsers)
	assert.Equal(t, []any{"alice", "bob"}, e.Data)

	assert.Equal(t, []string{"alice", "bob"}, hub.OnlineUserIDs())
}

func TestHandler_HeartbeatIsAcknowledged(t *testing.T) {
	_, srv := newTestServer(t)

	alice := dial(t, srv, "tok-alice")
	require.NoError(t, alice.WriteJSON(Event{Op: OpHeartbeat}))

	readEvent(t, alice, OpHeartbeatAck)
}

func TestHandler_TypingReachesHook(t *testing.T) {
	hub, srv := newTestServer(t)
	got := make(chan [2]string, 1)
	hub.OnTyping(func(fromID, toID string) {
		got <- [2]string{fromID, toID}
	})

	alice := dial(t, srv, "tok-alice")
	require.NoError(t, alice.WriteJSON(Event{Op: OpTyping, Data: TypingData{To: "bob"}}))

	select {
	case pair := <-got:
		assert.Equal(t, [2]string{"alice", "bob"}, pair)
	case <-time.After(2 * time.Second):
		t.Fatal("typing hook not called")
	}
}

func TestHandler_DisconnectUnregisters(t *testing.T) {
	hub, srv := newTestServer(t)

	alice := dial(t, srv, "tok-alice")
	readEvent(t, alice, OpOnlineUsers)
	require.NoError(t, alice.Close())

	assert.Eventually(t, func() bool {
		return len(hub.OnlineUserIDs()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_ReconnectReplacesOldConnection(t *testing.T) {
	hub, srv := newTestServer(t)

	first := dial(t, srv, "tok-alice")
	readEvent(t, first, OpOnlineUsers)

	second := dial(t, srv, "tok-alice")
	readEvent(t, second, OpOnlineUsers)

	// The first socket receives a close frame.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}

	assert.True(t, hub.Push("alice", OpNotification, "still here"))
	e := readEvent(t, second, OpNotification)
	assert.Equal(t, "still here", e.Data)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=q", nil)
	assert.Equal(t, "q", tokenFromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer h")
	assert.Equal(t, "h", tokenFromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "c"})
	assert.Equal(t, "c", tokenFromRequest(r))
}
