package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/syncroot/roomsync/pkg/domain"
)

// RunSnapshotStoreContract is a reusable suite verifying that an adapter
// complies with the SnapshotStore semantics. Every store adapter's tests
// run it against a fresh instance.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	t.Helper()
	ctx := context.Background()
	blob := []byte(`{"cart":{"items":[],"grand_total":0}}`)

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
		}
	})

	t.Run("Save_Load", func(t *testing.T) {
		if err := store.Save(ctx, "contract-session", blob); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Load(ctx, "contract-session")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if string(got) != string(blob) {
			t.Errorf("blob mismatch: got %q, want %q", got, blob)
		}
	})

	t.Run("Save_Overwrite", func(t *testing.T) {
		updated := []byte(`{"cart":{"items":[],"grand_total":10}}`)
		if err := store.Save(ctx, "contract-session", updated); err != nil {
			t.Fatalf("overwrite failed: %v", err)
		}
		got, err := store.Load(ctx, "contract-session")
		if err != nil {
			t.Fatalf("load after overwrite failed: %v", err)
		}
		if string(got) != string(updated) {
			t.Errorf("expected overwritten blob, got %q", got)
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		found := false
		for _, id := range ids {
			if id == "contract-session" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected contract-session in list, got %v", ids)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "contract-session"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := store.Load(ctx, "contract-session"); !errors.Is(err, domain.ErrSnapshotNotFound) {
			t.Fatalf("expected ErrSnapshotNotFound after delete, got %v", err)
		}
		// Deleting a missing snapshot is a no-op.
		if err := store.Delete(ctx, "contract-session"); err != nil {
			t.Fatalf("second delete should be a no-op, got %v", err)
		}
	})
}
