package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/syncroot/roomsync/pkg/domain"
)

// wireEnvelope covers both inbound dialects: {type, data} and {topic, payload}.
type wireEnvelope struct {
	Type    string          `json:"type,omitempty"`
	Topic   string          `json:"topic,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wireCommand is the outbound shape. The remote authority only speaks
// the {type, data} dialect for commands.
type wireCommand struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Encode serializes a command into a wire frame payload.
func Encode(cmd domain.Command) ([]byte, error) {
	if cmd.Kind == "" {
		return nil, fmt.Errorf("%w: command kind is empty", domain.ErrDecode)
	}
	data, err := json.Marshal(wireCommand{Type: cmd.Kind, Data: cmd.Args})
	if err != nil {
		return nil, fmt.Errorf("failed to encode command %q: %w", cmd.Kind, err)
	}
	return data, nil
}

// Decode parses a raw payload into an envelope.
// Any malformed input yields an error wrapping domain.ErrDecode; callers
// are expected to log and drop the frame rather than propagate.
func Decode(raw []byte) (domain.Envelope, error) {
	raw = Normalize(raw)

	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.Envelope{}, fmt.Errorf("%w: empty payload", domain.ErrDecode)
	}

	var wire wireEnvelope
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	env := domain.Envelope{
		Kind:  wire.Type,
		Topic: wire.Topic,
	}

	// {type, data} wins when both dialects are present.
	payload := wire.Data
	if payload == nil {
		payload = wire.Payload
	}
	env.Raw = payload

	// Convenience view for typed decoding. Non-object payloads (e.g. the
	// catalog item list) are only reachable through Raw.
	if len(payload) > 0 {
		var fields map[string]any
		if err := json.Unmarshal(payload, &fields); err == nil {
			env.Data = fields
		}
	}

	if env.Kind == "" && env.Topic == "" {
		return domain.Envelope{}, fmt.Errorf("%w: missing type and topic discriminators", domain.ErrDecode)
	}

	return env, nil
}

// DecodeFrame decodes a channel frame, folding the transport-level topic
// and sender into the envelope. A topic carried inside the JSON body wins
// over the transport topic only when the transport delivered none.
func DecodeFrame(f domain.Frame) (domain.Envelope, error) {
	env, err := Decode(f.Payload)
	if err != nil {
		// Topic-addressed transports may deliver bodies with no inner
		// discriminator at all (e.g. a bare state object on the
		// game_state_update topic). Treat the topic as the route.
		if f.Topic == "" {
			return domain.Envelope{}, err
		}
		env, err = decodeBare(f.Payload)
		if err != nil {
			return domain.Envelope{}, err
		}
	}
	if f.Topic != "" {
		env.Topic = f.Topic
	}
	env.Sender = f.Sender
	return env, nil
}

// decodeBare accepts a plain JSON object with no type/topic field, as
// published on dedicated topics.
func decodeBare(raw []byte) (domain.Envelope, error) {
	raw = Normalize(raw)
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return domain.Envelope{Data: fields, Raw: raw}, nil
}

// Normalize unwraps the transport's {"payload": ...} wrapper object,
// returning the inner payload bytes. Inputs that are not the wrapper
// shape pass through untouched. The wrapper's payload may itself be a
// JSON-encoded string, which is unquoted.
func Normalize(raw []byte) []byte {
	var wrapper struct {
		Type    *string         `json:"type"`
		Topic   *string         `json:"topic"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return raw
	}
	// A real envelope carries its own discriminator; only unwrap when the
	// object is nothing but a payload carrier.
	if wrapper.Payload == nil || wrapper.Type != nil || wrapper.Topic != nil {
		return raw
	}

	inner := wrapper.Payload
	var quoted string
	if err := json.Unmarshal(inner, &quoted); err == nil {
		return []byte(quoted)
	}
	return inner
}
