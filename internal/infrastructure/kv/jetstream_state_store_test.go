package kv

import (
	"context"
	"testing"
	"time"

	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runJetStream(t *testing.T) *server.Server {
	t.Helper()
	srv, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      server.RANDOM_PORT,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	require.NoError(t, err)

	go srv.Start()
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(srv.Shutdown)
	return srv
}

func TestJetStreamStateStore(t *testing.T) {
	ctx := context.Background()
	srv := runJetStream(t)

	store, err := NewJetStreamStateStore(srv.ClientURL(), "")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load(ctx, shared.StateKeyProducts)
	assert.Error(t, err, "load before init fails")

	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.Ping(ctx))

	_, err = store.Load(ctx, shared.StateKeyProducts)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, store.Save(ctx, shared.StateKeyProducts, []byte(`[]`)))
	require.NoError(t, store.Save(ctx, shared.StateKeyProducts, []byte(`[{"name":"Cake"}]`)))

	data, err := store.Load(ctx, shared.StateKeyProducts)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Cake"}]`, string(data))

	rev, err := store.Revision(ctx, shared.StateKeyProducts)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rev)
}

func TestJetStreamStateStore_ReopensExistingBucket(t *testing.T) {
	ctx := context.Background()
	srv := runJetStream(t)

	first, err := NewJetStreamStateStore(srv.ClientURL(), "shop")
	require.NoError(t, err)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.Save(ctx, shared.StateKeySettings, []byte(`{"shopName":"Brew"}`)))
	require.NoError(t, first.Close())

	second, err := NewJetStreamStateStore(srv.ClientURL(), "shop")
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Init(ctx))

	data, err := second.Load(ctx, shared.StateKeySettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"shopName":"Brew"}`, string(data))
}

func TestNewJetStreamStateStore_Unreachable(t *testing.T) {
	_, err := NewJetStreamStateStore("nats://127.0.0.1:1", "")
	assert.Error(t, err)
}
