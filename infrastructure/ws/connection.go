package ws

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"social-chat/contract"
	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var _ contract.Connection = (*Connection)(nil)

// Connection is one websocket session of a user.
// Outbound notifications go through a bounded buffer drained by writePump;
// a connection that cannot keep up is skipped, never waited for.
type Connection struct {
	id        contract.ConnectionID
	userID    chat.UserID
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	limiter   *rateLimiter
	config    Config
	log       *slog.Logger
}

func newConnection(conn *websocket.Conn, userID chat.UserID, config Config, log *slog.Logger) *Connection {
	id := contract.ConnectionID(uuid.NewString())
	conn.SetReadLimit(config.MaxMessageSize)
	return &Connection{
		id:      id,
		userID:  userID,
		conn:    conn,
		send:    make(chan []byte, config.SendBuffer),
		done:    make(chan struct{}),
		limiter: newRateLimiter(config.RateBurst, config.RateInterval),
		config:  config,
		log:     log.With("connection", id, "user_id", userID),
	}
}

func (c *Connection) ID() contract.ConnectionID {
	return c.id
}

// Consume queues a notification for writing.
// It fails with errors.ErrSlowConsumer when the buffer stays full until ctx is done.
func (c *Connection) Consume(ctx context.Context, n chat.Notification) error {
	payload, err := EncodeNotification(n)
	if err != nil {
		return err
	}
	// A closed connection never accepts, even while its buffer has room
	select {
	case <-c.done:
		return fmt.Errorf("%w: connection closed", errors.ErrNotBound)
	default:
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return fmt.Errorf("%w: connection closed", errors.ErrNotBound)
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", errors.ErrSlowConsumer, ctx.Err())
	}
}

// Close stops the write pump and closes the socket. It is safe to call twice.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump decodes every inbound frame and hands it to dispatch until the peer
// goes away or stops answering pings.
func (c *Connection) readPump(dispatch func(action chat.Action), reject func(err error)) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait)); err != nil {
		c.log.Warn("Unable to set read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		if !c.limiter.allow() {
			c.log.Warn("Rate limit exceeded, discarding frame",
				"burst", c.config.RateBurst, "interval", c.config.RateInterval)
			reject(fmt.Errorf("%w: rate limit exceeded", errors.ErrBackpressure))
			continue
		}
		action, err := DecodeAction(raw)
		if err != nil {
			c.log.Debug("Invalid frame", "error", err)
			reject(err)
			continue
		}
		dispatch(action)
	}
}

func (c *Connection) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("Frame exceeded maximum size", "max", c.config.MaxMessageSize)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway),
		errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		c.log.Debug("Connection closed by peer", "error", err)
	default:
		c.log.Info("Connection lost", "error", err)
	}
}

// writePump is the only writer of the socket.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			c.log.Debug("Unable to close connection", "error", err)
		}
	}()

	for {
		select {
		case payload := <-c.send:
			if err := c.write(websocket.TextMessage, payload); err != nil {
				c.log.Debug("Write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.log.Debug("Ping failed", "error", err)
				return
			}
		case <-c.done:
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Connection) write(messageType int, payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, payload)
}
