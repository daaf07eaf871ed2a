package roomsync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncroot/roomsync"
	"github.com/syncroot/roomsync/pkg/adapters/memory"
	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/ports"
)

func TestNewCommerce(t *testing.T) {
	local, remote := memory.NewChannelPair()
	sync := roomsync.NewCommerce("store-1", local)
	require.NoError(t, sync.Start(context.Background()))
	defer sync.Close()

	sub, cancel := sync.Subscribe()
	defer cancel()

	update := `{"type":"CART_UPDATE","data":{"items":[{"name":"X","qty":1,"price":5,"total":5}],"grand_total":5}}`
	require.NoError(t, remote.Publish(context.Background(), []byte(update), ports.PublishOptions{Reliable: true}))

	snap := <-sub
	assert.Equal(t, float64(5), snap.Cart.GrandTotal)
}

func TestNewArcade(t *testing.T) {
	local, remote := memory.NewChannelPair()
	sync := roomsync.NewArcade("run-1", local)
	require.NoError(t, sync.Start(context.Background()))
	defer sync.Close()

	sub, cancel := sync.Subscribe()
	defer cancel()

	state := `{"player":{"handle":"nyx","hp":80,"max_hp":80},"location":"neon-docks"}`
	require.NoError(t, remote.Publish(context.Background(), []byte(state),
		ports.PublishOptions{Reliable: true, Topic: "game_state_update"}))

	snap := <-sub
	assert.Equal(t, "nyx", snap.Player.Handle)
	assert.Equal(t, "neon-docks", snap.Location)
}

func TestVersionIsSet(t *testing.T) {
	assert.NotEmpty(t, roomsync.Version)
}

func TestSessionsStartIdle(t *testing.T) {
	local, _ := memory.NewChannelPair()
	assert.Equal(t, domain.PhaseIdle, roomsync.NewCommerce("x", local).Phase())
}
