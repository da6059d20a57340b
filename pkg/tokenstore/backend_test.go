package tokenstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/foodbank-client/pkg/config"
	"github.com/angelmondragon/foodbank-client/pkg/db"
	"github.com/stretchr/testify/require"
)

func TestSQLBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "tokens.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	backend, err := NewSQLBackend(ctx, client, "default")
	require.NoError(t, err)
	other, err := NewSQLBackend(ctx, client, "other")
	require.NoError(t, err)

	store := New(backend, nil)
	require.NoError(t, store.Write(ctx, "first"))
	require.NoError(t, store.Write(ctx, "second"))

	got, ok, err := store.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", got)

	legacy, ok, err := backend.Get(ctx, KeyLegacy)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", legacy)

	_, ok, err = other.Get(ctx, DefaultKeys...)
	require.NoError(t, err)
	require.False(t, ok, "profiles must not leak into each other")

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Read(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisBackendNamespacesKeys(t *testing.T) {
	ctx := context.Background()
	kv := newFakeRedisKV()
	backend, err := NewRedisBackend(kv, "kiosk")
	require.NoError(t, err)

	store := New(backend, nil)
	require.NoError(t, store.Write(ctx, "tok"))
	require.Equal(t, 1, kv.setAllCalls)
	require.Equal(t, "tok", kv.data["kiosk/authToken"])
	require.Equal(t, "tok", kv.data["kiosk/token"])

	delete(kv.data, "kiosk/authToken")
	got, ok, err := store.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok", got)

	require.NoError(t, store.Clear(ctx))
	require.Empty(t, kv.data)
}

func TestNewRedisBackendRequiresClient(t *testing.T) {
	_, err := NewRedisBackend(nil, "p")
	require.Error(t, err)
}

func TestOpenMemoryBackend(t *testing.T) {
	cfg := &config.Config{TokenStore: config.TokenStoreConfig{Backend: config.TokenBackendMemory}}
	store, closer, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	require.NoError(t, store.Write(context.Background(), "x"))
}

type fakeRedisKV struct {
	data        map[string]string
	setAllCalls int
}

func newFakeRedisKV() *fakeRedisKV {
	return &fakeRedisKV{data: map[string]string{}}
}

func (f *fakeRedisKV) FirstOf(_ context.Context, keys ...string) (string, bool, error) {
	for _, k := range keys {
		if v := f.data[k]; v != "" {
			return v, true, nil
		}
	}
	return "", false, nil
}

func (f *fakeRedisKV) SetAll(_ context.Context, values map[string]string) error {
	f.setAllCalls++
	for k, v := range values {
		f.data[k] = v
	}
	return nil
}

func (f *fakeRedisKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedisKV) TokenKey(profile, key string) string {
	return profile + "/" + key
}
