package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPhaseChange  EventType = "phase_change"
	EventSnapshot     EventType = "snapshot"
	EventFrameDropped EventType = "frame_dropped"
	EventCommandSent  EventType = "command_sent"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// PhaseEvent records a lifecycle transition.
type PhaseEvent struct {
	EventBase
	From Phase `json:"from"`
	To   Phase `json:"to"`
}

// SnapshotEvent records the publication of a new snapshot version.
type SnapshotEvent struct {
	EventBase
	Version uint64   `json:"version"`
	Route   RouteKey `json:"route"`
}

// DropEvent records a frame discarded before reduction.
type DropEvent struct {
	EventBase
	Reason string `json:"reason"`
}

// CommandEvent records an outbound command handed to the channel.
type CommandEvent struct {
	EventBase
	Kind  string   `json:"kind"`
	Class Delivery `json:"class"`
}

// LifecycleHooks defines callbacks for session observability.
type LifecycleHooks struct {
	OnPhaseChange  func(context.Context, *PhaseEvent)
	OnSnapshot     func(context.Context, *SnapshotEvent)
	OnFrameDropped func(context.Context, *DropEvent)
	OnCommandSent  func(context.Context, *CommandEvent)
}
