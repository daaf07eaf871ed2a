/*
Package reducer applies inbound envelopes to a snapshot.

A Registry maps (kind, topic) routes to handlers. State handlers are pure
functions from (snapshot, envelope) to a new snapshot; effect handlers
perform I/O and never touch the snapshot. Unknown routes are ignored by
design, keeping the protocol forward-compatible with future message kinds.
*/
package reducer
