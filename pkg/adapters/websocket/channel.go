// Package websocket adapts a gorilla/websocket connection to the
// ports.DataChannel interface.
//
// All transport concerns (framing, ordering, keepalive, teardown) belong
// to the websocket layer; this adapter only pumps frames. The socket is
// an ordered reliable stream, so reliable and best-effort publishes are
// identical here. Topics ride inside the JSON body on this transport, so
// inbound frames carry an empty transport topic.
package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/syncroot/roomsync/internal/logging"
	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/ports"
)

const frameBuffer = 64

// Channel is a DataChannel backed by a websocket connection.
type Channel struct {
	conn   *websocket.Conn
	frames chan domain.Frame
	ready  chan struct{}
	done   chan struct{}
	logger *slog.Logger

	writeMu  sync.Mutex
	doneOnce sync.Once
}

// Option configures the Channel.
type Option func(*Channel)

// WithLogger configures a logger for pump errors.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

// Dial connects to a websocket endpoint and starts the read pump.
// The returned channel reports ready immediately: the dial itself is the
// connection handshake.
func Dial(ctx context.Context, url string, opts ...Option) (*Channel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return NewFromConn(conn, opts...), nil
}

// NewFromConn wraps an established connection (e.g. the server side of
// an upgrade) and starts the read pump.
func NewFromConn(conn *websocket.Conn, opts ...Option) *Channel {
	c := &Channel{
		conn:   conn,
		frames: make(chan domain.Frame, frameBuffer),
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	close(c.ready)
	go c.readPump()
	return c
}

// readPump moves inbound messages onto the frames channel until the
// connection dies, then marks the channel done.
func (c *Channel) readPump() {
	defer c.markDone()
	defer close(c.frames)

	sender := c.conn.RemoteAddr().String()
	for {
		mt, payload, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("websocket read failed", "err", err)
			}
			return
		}
		switch mt {
		case websocket.TextMessage, websocket.BinaryMessage:
			// Never block past teardown: once nobody drains the buffer,
			// a bare send would pin this goroutine forever.
			select {
			case c.frames <- domain.Frame{Payload: payload, Sender: sender}:
			case <-c.done:
				return
			}
		default:
			// Control frames are the websocket layer's business.
		}
	}
}

// Frames implements ports.DataChannel.
func (c *Channel) Frames() <-chan domain.Frame {
	return c.frames
}

// Publish writes the payload as a text message. Writes are serialized;
// gorilla connections allow only one concurrent writer.
func (c *Channel) Publish(ctx context.Context, payload []byte, opts ports.PublishOptions) error {
	select {
	case <-c.done:
		return fmt.Errorf("publish on closed channel: %w", domain.ErrSessionClosed)
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// Ready implements ports.DataChannel.
func (c *Channel) Ready() <-chan struct{} {
	return c.ready
}

// Done implements ports.DataChannel.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close sends a close frame and tears the connection down. Idempotent.
func (c *Channel) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	err := c.conn.Close()
	c.markDone()
	return err
}

func (c *Channel) markDone() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

var _ ports.DataChannel = (*Channel)(nil)
