package domain

import "errors"

// ErrDecode is returned when an inbound frame does not contain a valid
// UTF-8 JSON envelope. Callers log and drop the frame; it is never fatal.
var ErrDecode = errors.New("malformed envelope")

// ErrNotConnected is returned when a command is submitted outside the
// Connected phase. The command is dropped, not queued.
var ErrNotConnected = errors.New("session not connected")

// ErrAckTimeout is returned when a reliable command's acknowledgement
// does not arrive within the configured window.
var ErrAckTimeout = errors.New("acknowledgement timed out")

// ErrSessionClosed is returned when an operation is attempted on a
// session that has reached the Disconnected phase.
var ErrSessionClosed = errors.New("session closed")

// ErrSnapshotNotFound is returned when a snapshot ID cannot be found in a store.
var ErrSnapshotNotFound = errors.New("snapshot not found")
