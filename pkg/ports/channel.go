package ports

import (
	"context"

	"github.com/syncroot/roomsync/pkg/domain"
)

// PublishOptions controls outbound delivery on a DataChannel.
type PublishOptions struct {
	// Reliable requests retried, acknowledged delivery from the transport.
	// Best-effort publishes may be dropped under pressure.
	Reliable bool

	// Topic routes the payload on transports that support topics.
	Topic string
}

// DataChannel is the surface of the external real-time communication SDK.
//
// roomsync deliberately implements no transport of its own: reconnection,
// ordering and reliable delivery are the channel's problem. Adapters wrap
// a concrete SDK (websocket, in-process loopback) behind this interface.
type DataChannel interface {
	// Frames delivers inbound frames. The channel closes it when the
	// connection is gone; no frames are delivered after that.
	Frames() <-chan domain.Frame

	// Publish sends a payload to the remote authority.
	Publish(ctx context.Context, payload []byte, opts PublishOptions) error

	// Ready is closed once the channel reports the connection established.
	Ready() <-chan struct{}

	// Done is closed when the channel is closed or fails. Terminal.
	Done() <-chan struct{}

	// Close tears down the channel.
	Close() error
}
