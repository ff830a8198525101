package ws

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
)

// Conn is one live, push-capable connection of a user.
//
// Send must not block: it enqueues the frame and reports false when the
// connection is closed or cannot keep up. Close must be safe to call more
// than once.
type Conn interface {
	Send(frame []byte) bool
	Close()
}

// Registry maps each online user to exactly one Conn.
type Registry interface {
	// Register makes conn the user's connection. A previous conn is closed.
	Register(userID string, conn Conn)
	// Unregister removes the user only if conn is still the registered one,
	// so a late disconnect of a replaced connection cannot evict its successor.
	Unregister(userID string, conn Conn) bool
	Lookup(userID string) (Conn, bool)
	OnlineUserIDs() []string
}

// EventPublisher is what services need from the realtime layer.
type EventPublisher interface {
	// Push delivers one event to one user and reports whether it was handed to
	// a live connection. false for an offline user is normal, not an error.
	Push(userID, op string, data any) bool
	BroadcastOnlineUsers()
	OnlineUserIDs() []string
}

// Hub is the in-process Registry and EventPublisher.
//
// Every outgoing frame is stamped and enqueued while mu is held for
// writing. That covers registry mutations and the online-users broadcast
// that follows them, targeted pushes, and replies to a single client. Two
// guarantees follow from it:
//   - clients observe online-users snapshots in the order the mutations
//     happened;
//   - the frames one connection receives carry strictly increasing seq.
//
// Holding the lock across Send is fine because Conn.Send never blocks: a
// full buffer is reported as a failed send, not waited on.
type Hub struct {
	// mu guards conns and seq. Lookup and OnlineUserIDs only read, so they
	// take the read lock; anything that stamps a frame takes the write lock.
	mu    sync.RWMutex
	conns map[string]Conn

	// seq is one server-wide counter, so a single connection sees gaps
	// wherever frames went to other users.
	seq int64

	// Hooks are set once during startup wiring, before any client connects,
	// and are read without the lock afterwards.
	onTyping         func(fromID, toID string)
	onUserDisconnect func(userID string)
}

var (
	_ Registry       = (*Hub)(nil)
	_ EventPublisher = (*Hub)(nil)
)

func NewHub() *Hub {
	return &Hub{conns: make(map[string]Conn)}
}

// OnTyping sets the handler for client typing events.
func (h *Hub) OnTyping(fn func(fromID, toID string)) {
	h.onTyping = fn
}

// OnUserDisconnected sets the handler run after a user's registration is removed.
func (h *Hub) OnUserDisconnected(fn func(userID string)) {
	h.onUserDisconnect = fn
}

func (h *Hub) Register(userID string, conn Conn) {
	h.mu.Lock()
	prev, ok := h.conns[userID]
	replaced := ok && prev != conn
	h.conns[userID] = conn
	if replaced {
		prev.Close()
	}
	slow := h.broadcastOnlineLocked()
	total := len(h.conns)
	h.mu.Unlock()

	if replaced {
		log.Printf("[ws] user %s reconnected, previous connection closed", userID)
	} else {
		log.Printf("[ws] user %s connected (online: %d)", userID, total)
	}
	h.evictAll(slow)
}

func (h *Hub) Unregister(userID string, conn Conn) bool {
	h.mu.Lock()
	current, ok := h.conns[userID]
	if !ok || current != conn {
		h.mu.Unlock()
		return false
	}
	delete(h.conns, userID)
	conn.Close()
	slow := h.broadcastOnlineLocked()
	total := len(h.conns)
	h.mu.Unlock()

	log.Printf("[ws] user %s disconnected (online: %d)", userID, total)

	if h.onUserDisconnect != nil {
		h.onUserDisconnect(userID)
	}
	h.evictAll(slow)
	return true
}

func (h *Hub) Lookup(userID string) (Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.conns[userID]
	return conn, ok
}

// OnlineUserIDs returns the online users sorted by id.
func (h *Hub) OnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.onlineIDsLocked()
}

func (h *Hub) onlineIDsLocked() []string {
	ids := make([]string, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) Push(userID, op string, data any) bool {
	event, ok := h.prepare(Event{Op: op, Data: data})
	if !ok {
		return false
	}

	h.mu.Lock()
	conn, online := h.conns[userID]
	delivered := false
	if online {
		frame, ok := h.frameLocked(event)
		delivered = ok && conn.Send(frame)
	}
	h.mu.Unlock()

	if online && !delivered {
		h.evictAll(map[string]Conn{userID: conn})
	}
	return delivered
}

// reply sends event to conn alone. It still goes through the hub so the
// frame takes its place in conn's seq order.
func (h *Hub) reply(conn Conn, event Event) bool {
	event, ok := h.prepare(event)
	if !ok {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	frame, ok := h.frameLocked(event)
	return ok && conn.Send(frame)
}

// BroadcastOnlineUsers sends the current online-users snapshot to everyone.
func (h *Hub) BroadcastOnlineUsers() {
	h.mu.Lock()
	slow := h.broadcastOnlineLocked()
	h.mu.Unlock()

	h.evictAll(slow)
}

// Shutdown closes every connection and empties the registry.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conn := range h.conns {
		conn.Close()
	}
	h.conns = make(map[string]Conn)
	log.Println("[ws] hub shut down, all connections closed")
}

// broadcastOnlineLocked needs h.mu held for writing and returns the
// connections that could not accept the frame.
func (h *Hub) broadcastOnlineLocked() map[string]Conn {
	frame, ok := h.frameLocked(Event{Op: OpOnlineUsers, Data: h.onlineIDsLocked()})
	if !ok {
		return nil
	}
	return h.sendAllLocked(frame)
}

func (h *Hub) sendAllLocked(frame []byte) map[string]Conn {
	var slow map[string]Conn
	for userID, conn := range h.conns {
		if !conn.Send(frame) {
			if slow == nil {
				slow = make(map[string]Conn)
			}
			slow[userID] = conn
		}
	}
	return slow
}

// evictAll unregisters connections that failed a send.
//
// Callers usually discover the failure while holding h.mu, and Unregister
// takes h.mu again, closes the conn and broadcasts a new snapshot (which may
// find more slow connections). Running it on its own goroutine keeps that
// chain off the caller's lock and off the caller's latency. Unregister is
// conditional, so if the user reconnected in the meantime the new
// connection survives.
func (h *Hub) evictAll(slow map[string]Conn) {
	if len(slow) == 0 {
		return
	}
	go func() {
		for userID, conn := range slow {
			log.Printf("[ws] dropping unresponsive connection of user %s", userID)
			h.Unregister(userID, conn)
		}
	}()
}

// prepare marshals the payload up front so the locked section only has to
// stamp seq around already-encoded data.
func (h *Hub) prepare(event Event) (Event, bool) {
	if event.Data == nil {
		return event, true
	}
	raw, err := json.Marshal(event.Data)
	if err != nil {
		log.Printf("[ws] failed to marshal %s event: %v", event.Op, err)
		return event, false
	}
	event.Data = json.RawMessage(raw)
	return event, true
}

// frameLocked stamps the next seq and encodes the frame. h.mu must be held
// for writing until the frame has been handed to Send.
func (h *Hub) frameLocked(event Event) ([]byte, bool) {
	h.seq++
	event.Seq = h.seq

	frame, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal %s event: %v", event.Op, err)
		return nil, false
	}
	return frame, true
}

func (h *Hub) handleTyping(fromID, toID string) {
	if h.onTyping != nil {
		h.onTyping(fromID, toID)
	}
}
