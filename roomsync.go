package roomsync

import (
	"github.com/syncroot/roomsync/pkg/ports"
	"github.com/syncroot/roomsync/pkg/session"
	"github.com/syncroot/roomsync/pkg/variants/arcade"
	"github.com/syncroot/roomsync/pkg/variants/commerce"
)

// Version is the library version, reported by the CLI.
var Version = "0.2.0"

// NewCommerce assembles a storefront session over the given channel: the
// commerce reducers are registered and the snapshot starts empty.
func NewCommerce(id string, ch ports.DataChannel, opts ...session.Option[commerce.Snapshot]) *session.Synchronizer[commerce.Snapshot] {
	return session.New(id, ch, commerce.NewRegistry(), commerce.NewSnapshot(), opts...)
}

// NewArcade assembles a game dashboard session over the given channel.
func NewArcade(id string, ch ports.DataChannel, opts ...session.Option[arcade.Snapshot]) *session.Synchronizer[arcade.Snapshot] {
	return session.New(id, ch, arcade.NewRegistry(), arcade.NewSnapshot(), opts...)
}
