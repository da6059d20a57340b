package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/angelmondragon/foodbank-client/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestSetAllAndFirstOf(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	primary := client.TokenKey("default", "authToken")
	legacy := client.TokenKey("default", "token")

	if err := client.SetAll(ctx, map[string]string{primary: "abc", legacy: "abc"}); err != nil {
		t.Fatalf("set all failed: %v", err)
	}
	if mock.msetCalls != 1 {
		t.Fatalf("expected a single MSET, got %d", mock.msetCalls)
	}

	got, ok, err := client.FirstOf(ctx, primary, legacy)
	if err != nil || !ok || got != "abc" {
		t.Fatalf("unexpected first value %q ok=%v err=%v", got, ok, err)
	}

	if err := client.Del(ctx, primary); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	got, ok, err = client.FirstOf(ctx, primary, legacy)
	if err != nil || !ok || got != "abc" {
		t.Fatalf("expected legacy fallback, got %q ok=%v err=%v", got, ok, err)
	}

	if err := client.Del(ctx, primary, legacy); err != nil {
		t.Fatalf("del of missing key should not fail: %v", err)
	}
	if _, ok, err := client.FirstOf(ctx, primary, legacy); err != nil || ok {
		t.Fatalf("expected no value after delete, ok=%v err=%v", ok, err)
	}
}

func TestFirstOfSurfacesErrors(t *testing.T) {
	mock := newMockCmdable()
	mock.mgetErr = errors.New("connection reset")
	client := &Client{store: mock}
	if _, _, err := client.FirstOf(context.Background(), "a"); err == nil {
		t.Fatal("expected mget error")
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without raw client should be a no-op: %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.TokenKey("default", "authToken"); got != "fb:token:default:authToken" {
		t.Fatalf("unexpected token key %s", got)
	}
	if got := client.TokenKey("", "token"); got != "fb:token:token" {
		t.Fatalf("empty profile should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected missing address to fail")
	}
	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 2, PoolSize: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 || opts.PoolSize != 7 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	data      map[string]string
	msetCalls int
	mgetErr   error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	if m.mgetErr != nil {
		return redis.NewSliceResult(nil, m.mgetErr)
	}
	out := make([]any, len(keys))
	for i, key := range keys {
		if v, ok := m.data[key]; ok {
			out[i] = v
		}
	}
	return redis.NewSliceResult(out, nil)
}

func (m *mockCmdable) MSet(ctx context.Context, values ...any) *redis.StatusCmd {
	m.msetCalls++
	for i := 0; i+1 < len(values); i += 2 {
		m.data[fmt.Sprint(values[i])] = fmt.Sprint(values[i+1])
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
		delete(m.data, key)
	}
	return redis.NewIntResult(n, nil)
}
