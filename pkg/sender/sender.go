// Package sender serializes outbound commands and hands them to the
// data channel. It enforces the session phase gate: commands submitted
// while the session is not connected are dropped with ErrNotConnected,
// never queued (no persistent outbox exists upstream).
package sender

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/syncroot/roomsync/internal/logging"
	"github.com/syncroot/roomsync/pkg/codec"
	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/ports"
)

// PhaseFunc reports the current session phase. The synchronizer owns the
// phase; the sender only reads it.
type PhaseFunc func() domain.Phase

// Sender transmits commands over a data channel.
type Sender struct {
	ch     ports.DataChannel
	phase  PhaseFunc
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Sender.
type Option func(*Sender)

// WithLogger configures a logger for dropped and sent commands.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sender) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle callbacks (OnCommandSent).
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Sender) {
		s.hooks = hooks
	}
}

// New creates a Sender bound to a channel and a phase source.
func New(ch ports.DataChannel, phase PhaseFunc, opts ...Option) *Sender {
	s := &Sender{
		ch:     ch,
		phase:  phase,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send encodes and publishes a command.
//
// Reliable commands rely on the channel's delivery guarantee; there is no
// retry here. Best-effort commands may be dropped by the transport.
func (s *Sender) Send(ctx context.Context, cmd domain.Command) error {
	if phase := s.phase(); !phase.Accepting() {
		s.logger.Warn("dropping command outside connected phase",
			"kind", cmd.Kind,
			"phase", string(phase),
		)
		return fmt.Errorf("cannot send %q in phase %q: %w", cmd.Kind, phase, domain.ErrNotConnected)
	}

	payload, err := codec.Encode(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}

	opts := ports.PublishOptions{
		Reliable: cmd.Class == domain.DeliveryReliable,
		Topic:    cmd.Topic,
	}
	if err := s.ch.Publish(ctx, payload, opts); err != nil {
		return fmt.Errorf("failed to publish command %q: %w", cmd.Kind, err)
	}

	s.logger.Debug("command sent", "kind", cmd.Kind, "class", string(cmd.Class))
	if s.hooks.OnCommandSent != nil {
		s.hooks.OnCommandSent(ctx, &domain.CommandEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCommandSent},
			Kind:      cmd.Kind,
			Class:     cmd.Class,
		})
	}
	return nil
}
