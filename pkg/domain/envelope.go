package domain

import "encoding/json"

// Frame is the raw tuple delivered by the underlying data channel.
// Payload is expected to be UTF-8 JSON, but nothing here assumes it is.
type Frame struct {
	Payload []byte
	Sender  string
	Topic   string
}

// Envelope is a decoded inbound message.
//
// Kind comes from the wire "type" field; Topic from the channel topic (or
// the wire "topic" field when the transport does not carry topics itself).
// Data holds the parsed payload object for typed decoding downstream; Raw
// preserves the original payload bytes for pass-through use cases such as
// durable export.
type Envelope struct {
	Kind   string
	Topic  string
	Sender string
	Data   map[string]any
	Raw    json.RawMessage
}

// RouteKey identifies the reducer responsible for an envelope.
type RouteKey struct {
	Kind  string
	Topic string
}

// Route returns the dispatch key: (kind, topic) when a topic is present,
// kind alone otherwise.
func (e Envelope) Route() RouteKey {
	if e.Topic != "" {
		return RouteKey{Kind: e.Kind, Topic: e.Topic}
	}
	return RouteKey{Kind: e.Kind}
}

// Protocol-level message vocabulary. Variant-specific kinds (catalog,
// cart, game state) live with their variant packages.
const (
	// KindSaveRequest asks the remote authority to serialize and return
	// the authoritative snapshot.
	KindSaveRequest = "SAVE_REQ"

	// KindSaveAck acknowledges a save request. Its payload is the
	// serialized snapshot, delivered on TopicSystem.
	KindSaveAck = "SAVE_ACK"

	// KindLoadRequest carries a previously exported snapshot back to the
	// remote authority for validation and re-broadcast.
	KindLoadRequest = "LOAD_REQ"

	// TopicSystem is the reserved topic for protocol control messages.
	TopicSystem = "system"
)
