package memory_test

import (
	"testing"

	"github.com/syncroot/roomsync/pkg/adapters/memory"
	"github.com/syncroot/roomsync/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, memory.NewStore())
}
