/*
Package domain contains the core domain models for the roomsync protocol.

It defines the fundamental entities of the state-synchronization client:
Envelopes received from the remote authority, Commands sent back to it,
Frames as delivered by the transport, and the session Phase lifecycle.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Envelope: A decoded inbound message with a kind/topic discriminator and payload.
  - Command: An outbound request, fire-and-forget or acknowledged.
  - Frame: The raw (payload, sender, topic) tuple delivered by the data channel.
  - Phase: The session lifecycle (Idle, Connecting, Connected, Disconnected).
*/
package domain
