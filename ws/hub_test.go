package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	full   bool
}

func (c *fakeConn) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.full {
		return false
	}
	c.frames = append(c.frames, frame)
	return true
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) events(t *testing.T) []Event {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Event, 0, len(c.frames))
	for _, f := range c.frames {
		var e Event
		require.NoError(t, json.Unmarshal(f, &e))
		out = append(out, e)
	}
	return out
}

func (c *fakeConn) eventsWithOp(t *testing.T, op string) []Event {
	var out []Event
	for _, e := range c.events(t) {
		if e.Op == op {
			out = append(out, e)
		}
	}
	return out
}

func onlineSnapshot(t *testing.T, e Event) []string {
	t.Helper()
	raw, ok := e.Data.([]any)
	require.True(t, ok, "online-users payload should be a list, got %T", e.Data)
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, v.(string))
	}
	return ids
}

func TestHub_RegisterAndLookup(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{}

	hub.Register("alice", a)

	got, ok := hub.Lookup("alice")
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = hub.Lookup("bob")
	assert.False(t, ok)
	assert.Equal(t, []string{"alice"}, hub.OnlineUserIDs())
}

func TestHub_RegisterReplacesAndClosesPrevious(t *testing.T) {
	hub := NewHub()
	first := &fakeConn{}
	second := &fakeConn{}

	hub.Register("alice", first)
	hub.Register("alice", second)

	got, ok := hub.Lookup("alice")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.True(t, first.isClosed())
	assert.False(t, second.isClosed())
	assert.Equal(t, []string{"alice"}, hub.OnlineUserIDs())
}

func TestHub_StaleUnregisterKeepsSuccessor(t *testing.T) {
	hub := NewHub()
	first := &fakeConn{}
	second := &fakeConn{}

	hub.Register("alice", first)
	hub.Register("alice", second)

	assert.False(t, hub.Unregister("alice", first))

	got, ok := hub.Lookup("alice")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestHub_UnregisterRemovesAndRunsHook(t *testing.T) {
	hub := NewHub()
	var disconnected []string
	hub.OnUserDisconnected(func(userID string) {
		disconnected = append(disconnected, userID)
	})

	a := &fakeConn{}
	hub.Register("alice", a)

	assert.True(t, hub.Unregister("alice", a))
	assert.True(t, a.isClosed())
	assert.Empty(t, hub.OnlineUserIDs())
	assert.Equal(t, []string{"alice"}, disconnected)

	assert.False(t, hub.Unregister("alice", a), "second unregister is a no-op")
	assert.Equal(t, []string{"alice"}, disconnected)
}

func TestHub_OnlineUsersBroadcastFollowsMutations(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{}
	b := &fakeConn{}

	hub.Register("alice", a)
	hub.Register("bob", b)
	hub.Unregister("bob", b)

	snapshots := a.eventsWithOp(t, OpOnlineUsers)
	require.Len(t, snapshots, 3)
	assert.Equal(t, []string{"alice"}, onlineSnapshot(t, snapshots[0]))
	assert.Equal(t, []string{"alice", "bob"}, onlineSnapshot(t, snapshots[1]))
	assert.Equal(t, []string{"alice"}, onlineSnapshot(t, snapshots[2]))

	for i := 1; i < len(snapshots); i++ {
		assert.Greater(t, snapshots[i].Seq, snapshots[i-1].Seq)
	}
}

func TestHub_BroadcastOnlineUsersOnRequest(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{}
	hub.Register("alice", a)

	hub.BroadcastOnlineUsers()

	snapshots := a.eventsWithOp(t, OpOnlineUsers)
	require.Len(t, snapshots, 2)
	assert.Equal(t, []string{"alice"}, onlineSnapshot(t, snapshots[1]))
}

func TestHub_PushOnlineAndOffline(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{}
	hub.Register("alice", a)

	assert.True(t, hub.Push("alice", OpReceiveMessage, map[string]string{"text": "hi"}))
	assert.False(t, hub.Push("bob", OpReceiveMessage, map[string]string{"text": "hi"}))

	got := a.eventsWithOp(t, OpReceiveMessage)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"text": "hi"}, got[0].Data)
}

func TestHub_PushPreservesOrder(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{}
	hub.Register("alice", a)

	for i := 0; i < 20; i++ {
		require.True(t, hub.Push("alice", OpNotification, i))
	}

	got := a.eventsWithOp(t, OpNotification)
	require.Len(t, got, 20)
	for i, e := range got {
		assert.Equal(t, float64(i), e.Data)
	}
}

func TestHub_ConcurrentPushesKeepSeqIncreasing(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{}
	b := &fakeConn{}
	hub.Register("alice", a)
	hub.Register("bob", b)

	const writers, perWriter = 8, 500
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				target := "alice"
				if i%3 == 0 {
					target = "bob"
				}
				hub.Push(target, OpNotification, w*perWriter+i)
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			hub.reply(a, Event{Op: OpHeartbeatAck})
			hub.BroadcastOnlineUsers()
		}
	}()
	wg.Wait()

	for name, conn := range map[string]*fakeConn{"alice": a, "bob": b} {
		events := conn.events(t)
		require.NotEmpty(t, events)
		for i := 1; i < len(events); i++ {
			require.Greater(t, events[i].Seq, events[i-1].Seq,
				"%s received seq %d after %d", name, events[i].Seq, events[i-1].Seq)
		}
	}
}

func TestHub_ReplyGoesOnlyToThatConnection(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{}
	b := &fakeConn{}
	hub.Register("alice", a)
	hub.Register("bob", b)

	assert.True(t, hub.reply(a, Event{Op: OpHeartbeatAck}))

	acks := a.eventsWithOp(t, OpHeartbeatAck)
	require.Len(t, acks, 1)
	assert.Nil(t, acks[0].Data)
	assert.Empty(t, b.eventsWithOp(t, OpHeartbeatAck))
}

func TestHub_PushToFullConnectionEvicts(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{full: true}
	hub.Register("alice", a)

	assert.False(t, hub.Push("alice", OpNotification, "x"))

	assert.Eventually(t, func() bool {
		_, ok := hub.Lookup("alice")
		return !ok
	}, time.Second, 10*time.Millisecond)
	assert.True(t, a.isClosed())
}

func TestHub_TypingHook(t *testing.T) {
	hub := NewHub()
	var got [][2]string
	hub.OnTyping(func(fromID, toID string) {
		got = append(got, [2]string{fromID, toID})
	})

	hub.handleTyping("alice", "bob")

	assert.Equal(t, [][2]string{{"alice", "bob"}}, got)
}

func TestHub_ShutdownClosesEverything(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{}
	b := &fakeConn{}
	hub.Register("alice", a)
	hub.Register("bob", b)

	hub.Shutdown()

	assert.True(t, a.isClosed())
	assert.True(t, b.isClosed())
	assert.Empty(t, hub.OnlineUserIDs())
}

func TestHub_ConcurrentRegisterUnregister(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i%10)
			conn := &fakeConn{}
			hub.Register(userID, conn)
			hub.Push(userID, OpNotification, i)
			hub.Unregister(userID, conn)
		}(i)
	}
	wg.Wait()

	for _, id := range hub.OnlineUserIDs() {
		conn, ok := hub.Lookup(id)
		require.True(t, ok)
		assert.False(t, conn.(*fakeConn).isClosed(), "registered conn for %s must be live", id)
	}
}
