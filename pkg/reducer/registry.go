package reducer

import (
	"context"
	"fmt"
	"sync"

	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/ports"
)

// Func is a pure state transition. It must not perform I/O and must be
// deterministic: the same (snapshot, envelope) always yields the same
// result. Implementations return the input snapshot unchanged on error.
type Func[S any] func(snap S, env domain.Envelope) (S, error)

// Outcome reports how an envelope was handled.
type Outcome string

const (
	// OutcomeApplied means a state handler produced a new snapshot.
	OutcomeApplied Outcome = "applied"

	// OutcomeEffect means the route is effect-only; the snapshot is
	// untouched and the caller should dispatch the effect.
	OutcomeEffect Outcome = "effect"

	// OutcomeIgnored means no handler is registered for the route.
	// Not an error: unknown kinds are silently skipped.
	OutcomeIgnored Outcome = "ignored"
)

// Registry routes envelopes to their handlers. The zero value is not
// usable; construct with New. Safe for concurrent use, though in practice
// registration happens at wiring time and Apply runs on a single loop.
type Registry[S any] struct {
	mu       sync.RWMutex
	reducers map[domain.RouteKey]Func[S]
	effects  map[domain.RouteKey]ports.EffectFunc
}

// New creates an empty registry.
func New[S any]() *Registry[S] {
	return &Registry[S]{
		reducers: make(map[domain.RouteKey]Func[S]),
		effects:  make(map[domain.RouteKey]ports.EffectFunc),
	}
}

// Handle registers a state handler for a route. A route registered twice
// is overwritten; a route cannot hold both a state and an effect handler,
// the last registration wins.
func (r *Registry[S]) Handle(key domain.RouteKey, fn Func[S]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.effects, key)
	r.reducers[key] = fn
}

// HandleEffect registers an effect-only handler for a route.
func (r *Registry[S]) HandleEffect(key domain.RouteKey, fn ports.EffectFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reducers, key)
	r.effects[key] = fn
}

// resolve finds the route for an envelope: exact (kind, topic) first,
// then topic-only, then kind-only.
func (r *Registry[S]) resolve(env domain.Envelope) (domain.RouteKey, bool) {
	candidates := []domain.RouteKey{env.Route()}
	if env.Topic != "" && env.Kind != "" {
		candidates = append(candidates,
			domain.RouteKey{Topic: env.Topic},
			domain.RouteKey{Kind: env.Kind},
		)
	}

	for _, key := range candidates {
		if _, ok := r.reducers[key]; ok {
			return key, true
		}
		if _, ok := r.effects[key]; ok {
			return key, true
		}
	}
	return domain.RouteKey{}, false
}

// Apply runs the state handler for the envelope's route, if any.
// The returned snapshot is the input when the outcome is not Applied.
// Apply itself never performs I/O; effect routes are reported for the
// caller to dispatch.
func (r *Registry[S]) Apply(snap S, env domain.Envelope) (S, Outcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.resolve(env)
	if !ok {
		return snap, OutcomeIgnored, nil
	}

	if fn, ok := r.reducers[key]; ok {
		next, err := fn(snap, env)
		if err != nil {
			return snap, OutcomeApplied, fmt.Errorf("reduce %s/%s: %w", key.Kind, key.Topic, err)
		}
		return next, OutcomeApplied, nil
	}

	return snap, OutcomeEffect, nil
}

// Dispatch runs the effect handler for the envelope's route. It
// implements ports.EffectDispatcher so a Registry can serve as the
// default dispatcher. Routes without an effect handler are a no-op.
func (r *Registry[S]) Dispatch(ctx context.Context, env domain.Envelope) error {
	r.mu.RLock()
	key, ok := r.resolve(env)
	var fn ports.EffectFunc
	if ok {
		fn = r.effects[key]
	}
	r.mu.RUnlock()

	if fn == nil {
		return nil
	}
	if err := fn(ctx, env); err != nil {
		return fmt.Errorf("effect %s/%s: %w", key.Kind, key.Topic, err)
	}
	return nil
}
