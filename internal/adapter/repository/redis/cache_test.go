package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	stored, err := cache.SetIfNewer(ctx, "balance:u1", 1, []byte(`{"amount":"1.00"}`), time.Minute)
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !stored {
		t.Fatalf("expected first write to be stored")
	}

	val, err := cache.Get(ctx, "balance:u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != `{"amount":"1.00"}` {
		t.Fatalf("unexpected cached value %s", val)
	}

	if !mr.Exists("splitledger:cache:balance:u1") {
		t.Fatalf("expected key to be stored under the cache prefix")
	}
}

func TestCacheRejectsOlderVersion(t *testing.T) {
	client, _ := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	if _, err := cache.SetIfNewer(ctx, "balance:u1", 3, []byte("v3"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	for _, version := range []int64{2, 3} {
		stored, err := cache.SetIfNewer(ctx, "balance:u1", version, []byte("stale"), time.Minute)
		if err != nil {
			t.Fatalf("set v%d failed: %v", version, err)
		}
		if stored {
			t.Fatalf("v%d should not replace v3", version)
		}
	}

	stored, err := cache.SetIfNewer(ctx, "balance:u1", 4, []byte("v4"), time.Minute)
	if err != nil || !stored {
		t.Fatalf("expected v4 to replace v3, stored=%v err=%v", stored, err)
	}

	val, _ := cache.Get(ctx, "balance:u1")
	if string(val) != "v4" {
		t.Fatalf("expected v4, got %s", val)
	}
}

func TestCacheMissReturnsNil(t *testing.T) {
	client, _ := newTestRedisClient(t)

	val, err := NewCache(client).Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("miss should not be an error: %v", err)
	}
	if val != nil {
		t.Fatalf("expected nil on miss, got %s", val)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	if _, err := cache.SetIfNewer(ctx, "short", 1, []byte("v"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	val, err := cache.Get(ctx, "short")
	if err != nil || val != nil {
		t.Fatalf("expected expired key to miss, got val=%s err=%v", val, err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, _ := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	if _, err := cache.SetIfNewer(ctx, "foo", 1, []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "foo"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if val, _ := cache.Get(ctx, "foo"); val != nil {
		t.Fatalf("expected deleted key to miss, got %s", val)
	}
}

func TestCacheUnavailable(t *testing.T) {
	client, mr := newTestRedisClient(t)

	mr.Close()

	if _, err := NewCache(client).Get(context.Background(), "foo"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
	if _, err := NewCache(client).SetIfNewer(context.Background(), "foo", 1, []byte("v"), time.Minute); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}
