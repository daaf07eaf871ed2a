package arcade

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/reducer"
)

// TopicGameState carries full-state broadcasts from the authority.
const TopicGameState = "game_state_update"

// Register wires the dashboard reducers into a registry.
func Register(reg *reducer.Registry[Snapshot]) {
	reg.Handle(domain.RouteKey{Topic: TopicGameState}, applyGameState)
}

// NewRegistry returns a registry with the dashboard reducers installed.
func NewRegistry() *reducer.Registry[Snapshot] {
	reg := reducer.New[Snapshot]()
	Register(reg)
	return reg
}

// applyGameState replaces the snapshot wholesale.
func applyGameState(snap Snapshot, env domain.Envelope) (Snapshot, error) {
	if env.Data == nil {
		return snap, fmt.Errorf("game state payload is not an object")
	}

	next := NewSnapshot()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &next,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return snap, err
	}
	if err := dec.Decode(env.Data); err != nil {
		return snap, fmt.Errorf("invalid game state payload: %w", err)
	}
	return next, nil
}
