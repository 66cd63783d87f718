package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// UserClient is one live connection. Outbound frames go through the buffered
// send channel so a slow socket never blocks a broadcast.
type UserClient struct {
	UserId int64

	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(userId int64, conn *websocket.Conn) *UserClient {
	return &UserClient{
		UserId: userId,
		conn:   conn,
		send:   make(chan []byte, 64),
	}
}

// Send queues a frame without blocking. It reports false when the client's
// buffer is full, which the hub treats as a dead subscriber, or when the
// client has already been closed. Send and CloseSend serialize on the
// client's mutex: eviction can close the channel while the evicted session's
// read goroutine is still replying on its own connection.
func (c *UserClient) Send(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// CloseSend ends the write pump once queued frames are drained. Safe to call
// from both the eviction path and the disconnect path, and safe to call
// twice.
func (c *UserClient) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump reads inbound frames and hands them to handler, one at a time.
// It returns when the transport drops.
func (c *UserClient) ReadPump(handler func(data []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		handler(data)
	}
}

// WritePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *UserClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
