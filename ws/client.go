package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second

	// pongWait is how long the server waits for any frame. Clients send a
	// heartbeat every 30s, so three missed heartbeats close the connection.
	pongWait = 90 * time.Second

	maxMessageSize = 4096

	sendBufferSize = 256
)

// Client is the websocket Conn of one user.
//
// Two goroutines serve it: ReadPump decodes incoming events and WritePump
// drains the send channel onto the socket. Closing the send channel makes
// WritePump send a close frame and tear the socket down, which in turn ends
// ReadPump.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string

	// send buffers encoded frames for WritePump. The hub never blocks on it:
	// when it is full Send refuses the frame and the hub evicts the client.
	send chan []byte

	// sendMu guards send and closed. Send and Close can race (a push from
	// the hub against an eviction or a replaced registration), and sending
	// on a closed channel panics, so both check closed under this lock.
	sendMu sync.Mutex
	closed bool

	// writeMu serialises writes to conn. gorilla/websocket allows one
	// concurrent writer; WritePump is the usual one, but the final close
	// frame also goes through writeMessage.
	writeMu sync.Mutex
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

// Send enqueues a frame without blocking. A full buffer means the client
// cannot keep up and the frame is refused.
func (c *Client) Send(frame []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close stops the write pump. Safe to call repeatedly.
func (c *Client) Close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads events until the connection fails, then unregisters the
// client. It blocks and must run on the connection's own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c.userID, c)
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for user %s: %v", c.userID, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("[ws] invalid message from user %s: %v", c.userID, err)
			continue
		}

		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	case OpGetOnlineUsers:
		c.hub.BroadcastOnlineUsers()

	case OpTyping:
		c.handleTyping(event)

	default:
		log.Printf("[ws] unknown op from user %s: %s", c.userID, event.Op)
	}
}

func (c *Client) handleTyping(event Event) {
	var data TypingData
	if !decodeData(event.Data, &data) || data.To == "" {
		return
	}
	c.hub.handleTyping(c.userID, data.To)
}

// decodeData re-decodes the generic Data field into a typed payload.
func decodeData(raw any, dst any) bool {
	b, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

// sendEvent replies to this client only.
func (c *Client) sendEvent(event Event) {
	c.hub.reply(c, event)
}

// WritePump writes queued frames to the socket until the send channel is closed.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for frame := range c.send {
		if err := c.writeMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}

	_ = c.writeMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *Client) writeMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
