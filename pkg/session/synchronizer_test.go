package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncroot/roomsync/pkg/adapters/memory"
	"github.com/syncroot/roomsync/pkg/codec"
	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/ports"
	"github.com/syncroot/roomsync/pkg/session"
	"github.com/syncroot/roomsync/pkg/variants/commerce"
)

const cartUpdate = `{"type":"CART_UPDATE","data":{
	"items":[{"name":"X","qty":2,"price":5,"total":10}],
	"grand_total":10
}}`

func startedSession(t *testing.T, opts ...session.Option[commerce.Snapshot]) (*session.Synchronizer[commerce.Snapshot], *memory.Channel) {
	t.Helper()
	local, remote := memory.NewChannelPair()
	sync := session.New("s-test", local, commerce.NewRegistry(), commerce.NewSnapshot(), opts...)
	require.NoError(t, sync.Start(context.Background()))
	t.Cleanup(func() { _ = sync.Close() })
	return sync, remote
}

func waitSnapshot(t *testing.T, sub <-chan commerce.Snapshot) commerce.Snapshot {
	t.Helper()
	select {
	case snap := <-sub:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot published")
		return commerce.Snapshot{}
	}
}

func TestSynchronizer_Lifecycle(t *testing.T) {
	local, _ := memory.NewChannelPair()
	sync := session.New("s1", local, commerce.NewRegistry(), commerce.NewSnapshot())

	assert.Equal(t, domain.PhaseIdle, sync.Phase())
	require.NoError(t, sync.Start(context.Background()))
	assert.Equal(t, domain.PhaseConnected, sync.Phase())

	require.NoError(t, sync.Close())
	assert.Equal(t, domain.PhaseDisconnected, sync.Phase())

	// Terminal: a session instance cannot be restarted.
	assert.Error(t, sync.Start(context.Background()))
}

func TestSynchronizer_AppliesInboundFrames(t *testing.T) {
	sync, remote := startedSession(t)
	sub, cancel := sync.Subscribe()
	defer cancel()

	require.NoError(t, remote.Publish(context.Background(), []byte(cartUpdate), ports.PublishOptions{Reliable: true}))

	snap := waitSnapshot(t, sub)
	require.Len(t, snap.Cart.Items, 1)
	assert.Equal(t, float64(10), snap.Cart.GrandTotal)
	assert.Equal(t, snap, sync.Snapshot())
	assert.Equal(t, uint64(1), sync.Version())
}

func TestSynchronizer_DropsMalformedFrames(t *testing.T) {
	dropped := make(chan string, 1)
	sync, remote := startedSession(t, session.WithHooks[commerce.Snapshot](domain.LifecycleHooks{
		OnFrameDropped: func(ctx context.Context, ev *domain.DropEvent) {
			dropped <- ev.Reason
		},
	}))

	require.NoError(t, remote.Publish(context.Background(), []byte("garbage"), ports.PublishOptions{Reliable: true}))

	select {
	case reason := <-dropped:
		assert.Equal(t, "decode", reason)
	case <-time.After(2 * time.Second):
		t.Fatal("drop hook never fired")
	}
	assert.Zero(t, sync.Version(), "malformed frames must not touch the snapshot")
}

func TestSynchronizer_UnknownKindIsNoop(t *testing.T) {
	sync, remote := startedSession(t)

	require.NoError(t, remote.Publish(context.Background(),
		[]byte(`{"type":"UNKNOWN_FUTURE_TYPE","data":{"x":1}}`), ports.PublishOptions{Reliable: true}))

	// Give the loop a moment; no version bump may occur.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, sync.Version())
	assert.Equal(t, commerce.NewSnapshot(), sync.Snapshot())
}

func TestSynchronizer_SendWhileDisconnected(t *testing.T) {
	local, remote := memory.NewChannelPair()
	sync := session.New("s2", local, commerce.NewRegistry(), commerce.NewSnapshot())
	require.NoError(t, sync.Start(context.Background()))
	require.NoError(t, sync.Close())

	err := sync.Send(context.Background(), domain.Reliable(domain.KindSaveRequest, nil))
	assert.ErrorIs(t, err, domain.ErrNotConnected)

	// No outbound frame was produced.
	select {
	case frame := <-remote.Frames():
		t.Fatalf("unexpected frame published: %s", frame.Payload)
	default:
	}
}

// remoteAuthority answers SAVE_REQ with a SAVE_ACK carrying the blob and
// answers LOAD_REQ by broadcasting the carried cart back out.
func remoteAuthority(t *testing.T, remote *memory.Channel, blob []byte) {
	t.Helper()
	go func() {
		ctx := context.Background()
		for frame := range remote.Frames() {
			env, err := codec.DecodeFrame(frame)
			if err != nil {
				continue
			}
			switch env.Kind {
			case domain.KindSaveRequest:
				ack, _ := json.Marshal(map[string]any{
					"type": domain.KindSaveAck,
					"data": json.RawMessage(blob),
				})
				_ = remote.Publish(ctx, ack, ports.PublishOptions{Reliable: true, Topic: domain.TopicSystem})
			case domain.KindLoadRequest:
				var loaded struct {
					Cart json.RawMessage `json:"cart"`
				}
				if err := json.Unmarshal(env.Raw, &loaded); err != nil {
					continue
				}
				update, _ := json.Marshal(map[string]any{
					"type": commerce.KindCartUpdate,
					"data": loaded.Cart,
				})
				_ = remote.Publish(ctx, update, ports.PublishOptions{Reliable: true})
			}
		}
	}()
}

func TestSynchronizer_SaveProtocol(t *testing.T) {
	store := memory.NewStore()
	reg := commerce.NewRegistry()
	reg.HandleEffect(domain.RouteKey{Kind: domain.KindSaveAck, Topic: domain.TopicSystem},
		func(ctx context.Context, env domain.Envelope) error {
			return store.Save(ctx, "s-save", env.Raw)
		})

	local, remote := memory.NewChannelPair()
	sync := session.New("s-save", local, reg, commerce.NewSnapshot())
	require.NoError(t, sync.Start(context.Background()))
	defer sync.Close()

	authoritative := []byte(`{"cart":{"items":[{"name":"X","qty":2,"price":5,"total":10}],"grand_total":10}}`)
	remoteAuthority(t, remote, authoritative)

	blob, err := sync.RequestSave(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, string(authoritative), string(blob))

	// The export effect ran before the ack settled the wait.
	archived, err := store.Load(context.Background(), "s-save")
	require.NoError(t, err)
	assert.JSONEq(t, string(authoritative), string(archived))

	// The ack is effect-only: the local snapshot stays untouched by it.
	assert.Zero(t, sync.Version())
}

func TestSynchronizer_SaveLoadRoundTrip(t *testing.T) {
	local, remote := memory.NewChannelPair()
	sync := session.New("s-rt", local, commerce.NewRegistry(), commerce.NewSnapshot())
	require.NoError(t, sync.Start(context.Background()))
	defer sync.Close()

	authoritative := []byte(`{"cart":{"items":[{"name":"X","qty":2,"price":5,"total":10}],"grand_total":10}}`)
	remoteAuthority(t, remote, authoritative)

	sub, cancel := sync.Subscribe()
	defer cancel()

	blob, err := sync.RequestSave(context.Background())
	require.NoError(t, err)

	// Re-import: the authority validates and broadcasts fresh state; the
	// synchronizer never self-applies the blob.
	require.NoError(t, sync.RequestLoad(context.Background(), blob))

	snap := waitSnapshot(t, sub)
	require.Len(t, snap.Cart.Items, 1)
	assert.Equal(t, "X", snap.Cart.Items[0].Name)
	assert.Equal(t, float64(10), snap.Cart.GrandTotal)
}

func TestSynchronizer_AckTimeout(t *testing.T) {
	sync, _ := startedSession(t, session.WithAckTimeout[commerce.Snapshot](50*time.Millisecond))

	start := time.Now()
	_, err := sync.RequestSave(context.Background())
	assert.ErrorIs(t, err, domain.ErrAckTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSynchronizer_SingleSaveInFlight(t *testing.T) {
	sync, _ := startedSession(t, session.WithAckTimeout[commerce.Snapshot](500*time.Millisecond))

	errs := make(chan error, 1)
	go func() {
		_, err := sync.RequestSave(context.Background())
		errs <- err
	}()
	time.Sleep(50 * time.Millisecond)

	_, err := sync.RequestSave(context.Background())
	assert.Error(t, err, "second save while one is awaiting its ack must fail")
	assert.NotErrorIs(t, err, domain.ErrAckTimeout)

	assert.ErrorIs(t, <-errs, domain.ErrAckTimeout)
}

func TestSynchronizer_RequestLoadValidatesBlob(t *testing.T) {
	sync, _ := startedSession(t)
	err := sync.RequestLoad(context.Background(), []byte("not json"))
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestSynchronizer_SubscribeAfterDisconnect(t *testing.T) {
	local, _ := memory.NewChannelPair()
	sync := session.New("s4", local, commerce.NewRegistry(), commerce.NewSnapshot())
	require.NoError(t, sync.Start(context.Background()))
	require.NoError(t, sync.Close())

	sub, cancel := sync.Subscribe()
	defer cancel()

	select {
	case _, ok := <-sub:
		assert.False(t, ok, "subscription on a terminal session must be closed")
	case <-time.After(time.Second):
		t.Fatal("subscription blocked on a terminal session")
	}
}

func TestSynchronizer_SaveSucceedsWhenEffectFails(t *testing.T) {
	reg := commerce.NewRegistry()
	reg.HandleEffect(domain.RouteKey{Kind: domain.KindSaveAck, Topic: domain.TopicSystem},
		func(ctx context.Context, env domain.Envelope) error {
			return errors.New("disk full")
		})

	local, remote := memory.NewChannelPair()
	sync := session.New("s-effect", local, reg, commerce.NewSnapshot())
	require.NoError(t, sync.Start(context.Background()))
	defer sync.Close()

	authoritative := []byte(`{"cart":{"items":[],"grand_total":0}}`)
	remoteAuthority(t, remote, authoritative)

	// Effect failures are logged, not surfaced: the ack still settles
	// the wait and the blob comes back.
	blob, err := sync.RequestSave(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, string(authoritative), string(blob))
}

func TestSynchronizer_DisconnectClosesSubscribers(t *testing.T) {
	local, _ := memory.NewChannelPair()
	sync := session.New("s3", local, commerce.NewRegistry(), commerce.NewSnapshot())
	require.NoError(t, sync.Start(context.Background()))

	sub, cancel := sync.Subscribe()
	defer cancel()

	require.NoError(t, sync.Close())

	select {
	case _, ok := <-sub:
		assert.False(t, ok, "subscriber channel should close on disconnect")
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never released")
	}
}
