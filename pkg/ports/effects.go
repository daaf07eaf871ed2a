package ports

import (
	"context"

	"github.com/syncroot/roomsync/pkg/domain"
)

// EffectDispatcher executes the I/O triggered by effect-only message
// kinds (e.g. exporting a SAVE_ACK payload to durable storage). Keeping
// it out of the reducer keeps state transitions pure and testable.
type EffectDispatcher interface {
	Dispatch(ctx context.Context, env domain.Envelope) error
}

// EffectFunc adapts a plain function to the EffectDispatcher interface.
type EffectFunc func(ctx context.Context, env domain.Envelope) error

func (f EffectFunc) Dispatch(ctx context.Context, env domain.Envelope) error {
	return f(ctx, env)
}
