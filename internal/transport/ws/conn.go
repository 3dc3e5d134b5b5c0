package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"github.com/nettd/lobby-server/internal/model"
	"github.com/nettd/lobby-server/internal/protocol"
	"github.com/nettd/lobby-server/internal/services/session"
)

// Buffer size for outgoing frames
const sendBufferSize = 256

// Conn is one realtime connection. All frames leave through the send
// channel so replies and broadcasts share a single ordered writer.
type Conn struct {
	id   session.ConnID
	sock *websocket.Conn

	send      chan []byte
	closeOnce sync.Once

	// current broadcast subscription, managed by the gateway under its
	// dispatch lock
	room model.RoomCode
}

func newConn(id session.ConnID, sock *websocket.Conn) *Conn {
	return &Conn{
		id:   id,
		sock: sock,
		send: make(chan []byte, sendBufferSize),
	}
}

// enqueue hands a frame to the write pump without blocking. Reports
// false when the client's buffer is full and the frame was dropped.
func (c *Conn) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// reply encodes and queues an operation reply
func (c *Conn) reply(logger *slog.Logger, r protocol.Reply) {
	frame, err := json.Marshal(r)
	if err != nil {
		logger.Error("reply encode failed", slog.String("op", r.Op))
		return
	}
	if !c.enqueue(frame) {
		logger.Warn("reply dropped, client buffer full",
			slog.String("conn", string(c.id)),
			slog.String("op", r.Op))
	}
}

// close releases the send channel so the write pump exits
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// writePump drains the send channel onto the socket. Runs in its own
// goroutine per connection and exits when the channel closes or a
// write fails.
func (c *Conn) writePump(ctx context.Context) {
	for frame := range c.send {
		if err := c.sock.Write(ctx, websocket.MessageText, frame); err != nil {
			return
		}
	}
}
