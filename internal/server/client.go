package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

var (
	errClientClosed = errors.New("connection closed")
	errSlowConsumer = errors.New("outbound queue full")
)

type closeFrame struct {
	code   int
	reason string
}

// client owns one WebSocket. Frames are queued by Send and written by
// writePump; the queue is closed exactly once, after which the writer flushes
// what is left, sends the close frame and drops the socket.
type client struct {
	id       string
	conn     *websocket.Conn
	remote   string
	log      zerolog.Logger
	pongWait time.Duration

	mu     sync.Mutex
	send   chan []byte
	closed bool
	frame  closeFrame
}

// newClient wraps conn. log is set here and never reassigned, since Send is
// called from room goroutines.
func newClient(conn *websocket.Conn, remote, room string, queue int, pongWait time.Duration) *client {
	id := uuid.NewString()
	return &client{
		id:       id,
		conn:     conn,
		remote:   remote,
		log:      log.With().Str("conn", id).Str("remote", remote).Str("room", room).Logger(),
		pongWait: pongWait,
		send:     make(chan []byte, queue),
	}
}

// Send queues a frame without blocking. A full queue means the peer is not
// keeping up; the connection is closed.
func (c *client) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClientClosed
	}
	select {
	case c.send <- frame:
		return nil
	default:
		c.log.Warn().Int("queued", len(c.send)).Msg("slow consumer disconnected")
		c.closeLocked(websocket.CloseNormalClosure, "")
		return errSlowConsumer
	}
}

func (c *client) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked(code, reason)
}

func (c *client) closeLocked(code int, reason string) {
	if c.closed {
		return
	}
	c.closed = true
	c.frame = closeFrame{code: code, reason: reason}
	close(c.send)
}

func (c *client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.mu.Lock()
				cf := c.frame
				c.mu.Unlock()
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(cf.code, cf.reason))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug().Err(err).Msg("ws write failed")
				c.Close(websocket.CloseNormalClosure, "")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseNormalClosure, "")
				return
			}
		}
	}
}

// prepareRead applies the size limit and the liveness deadline that every
// pong pushes forward.
func (c *client) prepareRead(limit int64) {
	c.conn.SetReadLimit(limit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})
}
