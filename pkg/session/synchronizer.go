package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/syncroot/roomsync/internal/logging"
	"github.com/syncroot/roomsync/pkg/codec"
	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/ports"
	"github.com/syncroot/roomsync/pkg/reducer"
	"github.com/syncroot/roomsync/pkg/sender"
)

// DefaultAckTimeout bounds the wait for a reliable command's
// acknowledgement. The upstream protocol left this unbounded; here an
// expired wait fails with domain.ErrAckTimeout and the caller decides
// whether to retry.
const DefaultAckTimeout = 30 * time.Second

// Synchronizer keeps a local snapshot of type S in sync with the remote
// authority. Create with New, wire reducers on the registry, then Start.
type Synchronizer[S any] struct {
	id         string
	ch         ports.DataChannel
	registry   *reducer.Registry[S]
	sender     *sender.Sender
	dispatcher ports.EffectDispatcher
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	ackTimeout time.Duration

	mu      sync.RWMutex
	phase   domain.Phase
	snap    S
	version uint64

	subs    map[int]chan S
	nextSub int

	pendingMu sync.Mutex
	pending   map[string]chan domain.Envelope

	started bool
	closed  chan struct{}
	loop    sync.WaitGroup
}

// Option configures the Synchronizer.
type Option[S any] func(*Synchronizer[S])

// WithLogger configures a logger.
func WithLogger[S any](logger *slog.Logger) Option[S] {
	return func(s *Synchronizer[S]) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks[S any](hooks domain.LifecycleHooks) Option[S] {
	return func(s *Synchronizer[S]) {
		s.hooks = hooks
	}
}

// WithAckTimeout overrides DefaultAckTimeout.
func WithAckTimeout[S any](d time.Duration) Option[S] {
	return func(s *Synchronizer[S]) {
		s.ackTimeout = d
	}
}

// WithEffectDispatcher overrides the registry as the effect sink.
func WithEffectDispatcher[S any](d ports.EffectDispatcher) Option[S] {
	return func(s *Synchronizer[S]) {
		s.dispatcher = d
	}
}

// New creates a Synchronizer in the Idle phase with the given initial
// snapshot. The registry's effect table is the default effect dispatcher.
func New[S any](id string, ch ports.DataChannel, reg *reducer.Registry[S], initial S, opts ...Option[S]) *Synchronizer[S] {
	s := &Synchronizer[S]{
		id:         id,
		ch:         ch,
		registry:   reg,
		dispatcher: reg,
		logger:     logging.NewNop(),
		ackTimeout: DefaultAckTimeout,
		phase:      domain.PhaseIdle,
		snap:       initial,
		subs:       make(map[int]chan S),
		pending:    make(map[string]chan domain.Envelope),
		closed:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.ForSession(s.logger, id)
	s.sender = sender.New(ch, s.Phase,
		sender.WithLogger(s.logger),
		sender.WithHooks(s.hooks),
	)
	return s
}

// Start transitions Idle -> Connecting, waits for the channel to report
// ready, and launches the event loop. It blocks until the session is
// Connected or fails.
func (s *Synchronizer[S]) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("session %q already started", s.id)
	}
	s.started = true
	s.mu.Unlock()

	s.setPhase(ctx, domain.PhaseConnecting)

	select {
	case <-s.ch.Ready():
	case <-s.ch.Done():
		s.shutdown(ctx)
		return fmt.Errorf("channel closed before ready: %w", domain.ErrSessionClosed)
	case <-ctx.Done():
		s.shutdown(ctx)
		return ctx.Err()
	}

	s.setPhase(ctx, domain.PhaseConnected)

	s.loop.Add(1)
	go s.run(ctx)
	return nil
}

// run is the single inbound event loop. One frame is fully processed
// before the next; reducers never run concurrently on the same snapshot.
func (s *Synchronizer[S]) run(ctx context.Context) {
	defer s.loop.Done()
	defer s.shutdown(ctx)

	frames := s.ch.Frames()
	for {
		select {
		case <-s.ch.Done():
			return
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			s.handleFrame(ctx, frame)
		}
	}
}

func (s *Synchronizer[S]) handleFrame(ctx context.Context, frame domain.Frame) {
	env, err := codec.DecodeFrame(frame)
	if err != nil {
		s.logger.Warn("dropping malformed frame",
			"err", err,
			"sender", frame.Sender,
			"topic", frame.Topic,
		)
		s.emitDrop(ctx, "decode")
		return
	}

	// Acks settle after the reducer/effect path, so a waiter released by
	// settleAck knows the effect was at least attempted.
	defer s.settleAck(env)

	next, outcome, err := s.registry.Apply(s.snapshotLocked(), env)
	switch outcome {
	case reducer.OutcomeApplied:
		if err != nil {
			s.logger.Warn("dropping envelope rejected by reducer", "err", err, "kind", env.Kind)
			s.emitDrop(ctx, "reduce")
			return
		}
		s.publish(ctx, next, env.Route())
	case reducer.OutcomeEffect:
		if err := s.dispatcher.Dispatch(ctx, env); err != nil {
			s.logger.Error("effect failed", "err", err, "kind", env.Kind, "topic", env.Topic)
		}
	case reducer.OutcomeIgnored:
		// Forward compatible: unknown kinds are skipped by design.
		s.logger.Debug("ignoring unknown message kind", "kind", env.Kind, "topic", env.Topic)
	}
}

func (s *Synchronizer[S]) snapshotLocked() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// publish replaces the snapshot reference atomically from the observers'
// point of view and fans the new value out to subscribers.
func (s *Synchronizer[S]) publish(ctx context.Context, next S, route domain.RouteKey) {
	s.mu.Lock()
	s.snap = next
	s.version++
	version := s.version
	for _, sub := range s.subs {
		select {
		case sub <- next:
		default:
			// Slow observer; it can catch up via Snapshot().
		}
	}
	s.mu.Unlock()

	if s.hooks.OnSnapshot != nil {
		s.hooks.OnSnapshot(ctx, &domain.SnapshotEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSnapshot, SessionID: s.id},
			Version:   version,
			Route:     route,
		})
	}
}

// Snapshot returns the latest snapshot.
func (s *Synchronizer[S]) Snapshot() S {
	return s.snapshotLocked()
}

// Version returns the number of applied updates since session start.
func (s *Synchronizer[S]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Phase returns the current lifecycle phase.
func (s *Synchronizer[S]) Phase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Subscribe registers an observer. The returned channel receives each
// published snapshot; slow observers miss intermediate versions but
// never see a torn one. Cancel releases the subscription.
func (s *Synchronizer[S]) Subscribe() (<-chan S, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Disconnected is terminal: nothing will ever be published, so hand
	// back a closed channel instead of one that blocks forever.
	if s.phase == domain.PhaseDisconnected {
		sub := make(chan S)
		close(sub)
		return sub, func() {}
	}

	id := s.nextSub
	s.nextSub++
	sub := make(chan S, 1)
	s.subs[id] = sub

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return sub, cancel
}

// Send submits a command to the remote authority. Outside the Connected
// phase it fails with domain.ErrNotConnected.
func (s *Synchronizer[S]) Send(ctx context.Context, cmd domain.Command) error {
	return s.sender.Send(ctx, cmd)
}

// RequestSave sends a reliable SAVE_REQ and waits for the correlated
// SAVE_ACK. The ack's payload (the serialized authoritative snapshot) is
// returned; any effect registered for SAVE_ACK has already been attempted
// by then, but effect failures are logged, not returned — callers needing
// durability should check the returned blob reached its destination. The
// wait is bounded by the ack timeout.
func (s *Synchronizer[S]) RequestSave(ctx context.Context) ([]byte, error) {
	ack, err := s.await(domain.KindSaveAck)
	if err != nil {
		return nil, err
	}
	defer s.forget(domain.KindSaveAck)

	if err := s.sender.Send(ctx, domain.Reliable(domain.KindSaveRequest, nil)); err != nil {
		return nil, err
	}

	timer := time.NewTimer(s.ackTimeout)
	defer timer.Stop()

	select {
	case env := <-ack:
		return env.Raw, nil
	case <-timer.C:
		return nil, fmt.Errorf("no %s within %s: %w", domain.KindSaveAck, s.ackTimeout, domain.ErrAckTimeout)
	case <-s.closed:
		return nil, domain.ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RequestLoad sends a reliable LOAD_REQ carrying a previously exported
// snapshot. The remote authority validates and applies it, then
// broadcasts fresh state to all observers; the local snapshot is never
// self-applied from the blob.
func (s *Synchronizer[S]) RequestLoad(ctx context.Context, blob []byte) error {
	if !json.Valid(blob) {
		return fmt.Errorf("%w: load blob is not valid JSON", domain.ErrDecode)
	}
	return s.sender.Send(ctx, domain.Reliable(domain.KindLoadRequest, json.RawMessage(blob)))
}

// await registers a single waiter for an ack kind.
func (s *Synchronizer[S]) await(kind string) (chan domain.Envelope, error) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if _, exists := s.pending[kind]; exists {
		return nil, fmt.Errorf("a command awaiting %s is already in flight", kind)
	}
	ch := make(chan domain.Envelope, 1)
	s.pending[kind] = ch
	return ch, nil
}

func (s *Synchronizer[S]) forget(kind string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	delete(s.pending, kind)
}

// settleAck hands an inbound envelope to the waiter correlated by kind,
// if any. Called after the reducer/effect path has processed the envelope.
func (s *Synchronizer[S]) settleAck(env domain.Envelope) {
	s.pendingMu.Lock()
	waiter, ok := s.pending[env.Kind]
	s.pendingMu.Unlock()
	if !ok {
		return
	}
	select {
	case waiter <- env:
	default:
	}
}

// Close tears down the channel and the session. Idempotent.
func (s *Synchronizer[S]) Close() error {
	err := s.ch.Close()
	s.loop.Wait()
	s.shutdown(context.Background())
	return err
}

// shutdown moves to the terminal Disconnected phase and releases
// observers and pending waiters. Safe to call more than once.
func (s *Synchronizer[S]) shutdown(ctx context.Context) {
	s.mu.Lock()
	if s.phase == domain.PhaseDisconnected {
		s.mu.Unlock()
		return
	}
	prev := s.phase
	s.phase = domain.PhaseDisconnected
	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub)
	}
	s.mu.Unlock()

	select {
	case <-s.closed:
	default:
		close(s.closed)
	}

	s.logger.Info("session disconnected", "previous_phase", string(prev))
	s.emitPhase(ctx, prev, domain.PhaseDisconnected)
}

func (s *Synchronizer[S]) setPhase(ctx context.Context, next domain.Phase) {
	s.mu.Lock()
	prev := s.phase
	s.phase = next
	s.mu.Unlock()
	s.logger.Debug("phase change", "from", string(prev), "to", string(next))
	s.emitPhase(ctx, prev, next)
}

func (s *Synchronizer[S]) emitPhase(ctx context.Context, from, to domain.Phase) {
	if s.hooks.OnPhaseChange != nil {
		s.hooks.OnPhaseChange(ctx, &domain.PhaseEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPhaseChange, SessionID: s.id},
			From:      from,
			To:        to,
		})
	}
}

func (s *Synchronizer[S]) emitDrop(ctx context.Context, reason string) {
	if s.hooks.OnFrameDropped != nil {
		s.hooks.OnFrameDropped(ctx, &domain.DropEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventFrameDropped, SessionID: s.id},
			Reason:    reason,
		})
	}
}
