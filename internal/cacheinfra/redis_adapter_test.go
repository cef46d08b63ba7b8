package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type record struct {
	ID    string  `msgpack:"id"`
	Name  string  `msgpack:"name"`
	Price float64 `msgpack:"price"`
}

func newRedisHarness(t *testing.T) (*miniredis.Miniredis, *redisService) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewRedisServiceWithClient(client, RedisConfig{
		Addr:      mr.Addr(),
		KeyPrefix: "pagedq",
		TTL:       15 * time.Minute,
	})
	return mr, svc
}

func TestRedisConfig_Validate(t *testing.T) {
	if err := (RedisConfig{Addr: "localhost:6379", TTL: time.Minute}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := (RedisConfig{TTL: time.Minute}).Validate(); err == nil {
		t.Error("Validate() without address = nil, want error")
	}
	if err := (RedisConfig{Addr: "localhost:6379"}).Validate(); err == nil {
		t.Error("Validate() without TTL = nil, want error")
	}
}

func TestRedisService_RoundTripsConcreteType(t *testing.T) {
	_, svc := newRedisHarness(t)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (record, error) {
		calls++
		return record{ID: "1", Name: "Whole Milk", Price: 3.49}, nil
	}

	first, err := svc.GetOrFetch(ctx, "product::get::id_1", fetch)
	if err != nil {
		t.Fatalf("GetOrFetch() error: %v", err)
	}

	// The second call is served from redis; the payload must decode back
	// into the concrete type, not a generic map.
	second, err := svc.GetOrFetch(ctx, "product::get::id_1", fetch)
	if err != nil {
		t.Fatalf("GetOrFetch() cached error: %v", err)
	}

	got, ok := second.(record)
	if !ok {
		t.Fatalf("cached value is %T, want record", second)
	}
	if got != first.(record) {
		t.Errorf("cached value = %+v, want %+v", got, first)
	}
	if calls != 1 {
		t.Errorf("fetch ran %d times, want 1", calls)
	}
}

func TestRedisService_SetsTTL(t *testing.T) {
	mr, svc := newRedisHarness(t)
	ctx := context.Background()

	_, err := svc.GetOrFetch(ctx, "k", func(ctx context.Context) (string, error) {
		return "v", nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch() error: %v", err)
	}

	ttl := mr.TTL("pagedq:k")
	if ttl != 15*time.Minute {
		t.Errorf("TTL = %v, want 15m", ttl)
	}

	// Once the TTL elapses the entry is gone and the next call refetches.
	mr.FastForward(16 * time.Minute)
	calls := 0
	_, err = svc.GetOrFetch(ctx, "k", func(ctx context.Context) (string, error) {
		calls++
		return "v2", nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch() after expiry: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch after expiry ran %d times, want 1", calls)
	}
}

func TestRedisService_FetchErrorNotCached(t *testing.T) {
	mr, svc := newRedisHarness(t)
	ctx := context.Background()

	boom := errors.New("storage down")
	if _, err := svc.GetOrFetch(ctx, "k", func(ctx context.Context) (string, error) {
		return "", boom
	}); !errors.Is(err, boom) {
		t.Fatalf("GetOrFetch() = %v, want %v", err, boom)
	}

	if mr.Exists("pagedq:k") {
		t.Error("failed fetch left an entry behind")
	}
}

func TestRedisService_Delete(t *testing.T) {
	mr, svc := newRedisHarness(t)
	ctx := context.Background()

	if _, err := svc.GetOrFetch(ctx, "k", func(ctx context.Context) (string, error) {
		return "v", nil
	}); err != nil {
		t.Fatalf("GetOrFetch() error: %v", err)
	}
	if err := svc.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if mr.Exists("pagedq:k") {
		t.Error("entry still present after Delete")
	}
}

func TestRedisService_DeleteByPrefix(t *testing.T) {
	mr, svc := newRedisHarness(t)
	ctx := context.Background()

	for _, key := range []string{"product::P:1", "product::P:2", "user::P:1"} {
		k := key
		if _, err := svc.GetOrFetch(ctx, k, func(ctx context.Context) (string, error) {
			return k, nil
		}); err != nil {
			t.Fatalf("GetOrFetch(%q) error: %v", k, err)
		}
	}

	if err := svc.DeleteByPrefix(ctx, "product::"); err != nil {
		t.Fatalf("DeleteByPrefix() error: %v", err)
	}

	if mr.Exists("pagedq:product::P:1") || mr.Exists("pagedq:product::P:2") {
		t.Error("product entries survived DeleteByPrefix")
	}
	if !mr.Exists("pagedq:user::P:1") {
		t.Error("user entry was removed by an unrelated prefix")
	}
}
