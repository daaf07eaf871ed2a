package ports

import "context"

// SnapshotStore archives exported snapshots as raw JSON blobs keyed by
// session ID. This backs the durable side of the save/load protocol:
// SAVE_ACK payloads land here, LOAD_REQ payloads are read from here.
type SnapshotStore interface {
	// Save persists the serialized snapshot for a session ID.
	Save(ctx context.Context, sessionID string, data []byte) error

	// Load retrieves the serialized snapshot for a session ID.
	// Returns domain.ErrSnapshotNotFound if none exists.
	Load(ctx context.Context, sessionID string) ([]byte, error)

	// Delete removes the snapshot for a session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the session IDs with an archived snapshot.
	List(ctx context.Context) ([]string, error)
}
