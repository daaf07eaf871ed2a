// Package memory provides in-process adapters: a loopback data channel
// pair for tests and demos, and an in-memory snapshot store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/ports"
)

const defaultBuffer = 64

// Channel is one end of an in-process duplex pair. Publishes on one end
// surface as frames on the other. Both ends report ready immediately;
// closing either end terminates the pair.
type Channel struct {
	name   string
	frames chan domain.Frame
	peer   *Channel
	ready  chan struct{}
	done   chan struct{}

	// Shared with the peer so either end can terminate the pair.
	closeOnce *sync.Once
}

// NewChannelPair creates two connected ends. By convention the first is
// the local client end and the second the remote authority end.
func NewChannelPair() (*Channel, *Channel) {
	once := &sync.Once{}
	local := &Channel{
		name:      "local",
		frames:    make(chan domain.Frame, defaultBuffer),
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
		closeOnce: once,
	}
	remote := &Channel{
		name:      "remote",
		frames:    make(chan domain.Frame, defaultBuffer),
		ready:     local.ready,
		done:      local.done,
		closeOnce: once,
	}
	local.peer = remote
	remote.peer = local
	close(local.ready)
	return local, remote
}

// Frames implements ports.DataChannel.
func (c *Channel) Frames() <-chan domain.Frame {
	return c.frames
}

// Publish delivers the payload to the peer end. Reliable publishes block
// until the peer has buffer room; best-effort publishes are dropped when
// the buffer is full.
func (c *Channel) Publish(ctx context.Context, payload []byte, opts ports.PublishOptions) error {
	select {
	case <-c.done:
		return fmt.Errorf("publish on closed channel: %w", domain.ErrSessionClosed)
	default:
	}

	// Copy: the caller may reuse the buffer.
	frame := domain.Frame{
		Payload: append([]byte(nil), payload...),
		Sender:  c.name,
		Topic:   opts.Topic,
	}

	if opts.Reliable {
		select {
		case c.peer.frames <- frame:
			return nil
		case <-c.done:
			return fmt.Errorf("publish on closed channel: %w", domain.ErrSessionClosed)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case c.peer.frames <- frame:
	default:
		// Best-effort: dropped under pressure, like the real transport.
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

// Close terminates both ends. Idempotent.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

var _ ports.DataChannel = (*Channel)(nil)
