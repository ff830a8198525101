// Package ws is the realtime layer: the connection registry, the dispatcher
// that pushes events to online users, and the websocket transport.
//
// Every frame in both directions is one JSON Event:
//
//	{"op": "receive-message", "d": {...}, "seq": 42}
//
// seq comes from one server-wide counter and is stamped under the hub lock
// together with the enqueue, so on any single connection it strictly
// increases. It is shared across users, so gaps between consecutive frames
// are normal and do not mean a frame was lost.
package ws

// Event is the wire envelope.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → server ops.
const (
	OpHeartbeat      = "heartbeat"        // keeps the read deadline alive
	OpGetOnlineUsers = "get-online-users" // asks for an online-users broadcast
	OpTyping         = "typing"           // d: TypingData{To}
)

// Server → client ops.
const (
	OpHeartbeatAck   = "heartbeat_ack"
	OpOnlineUsers    = "online-users"    // d: []string, full snapshot
	OpReceiveMessage = "receive-message" // d: models.Message
	OpNotification   = "notification"    // d: models.Notification
	OpUserTyping     = "userTyping"      // d: TypingData{From, To}
)

// TypingData is the payload of typing (client sends To) and userTyping
// (server fills both).
type TypingData struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
}
