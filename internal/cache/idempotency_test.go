package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIdempotencyStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ok, _ := s.TryLock(ctx, "7", "k1")
	if !ok {
		t.Fatalf("first lock should succeed")
	}
	if ok, _ := s.TryLock(ctx, "7", "k1"); ok {
		t.Fatalf("second lock should fail")
	}
	if ok, _ := s.TryLock(ctx, "8", "k1"); !ok {
		t.Fatalf("scopes must be independent")
	}

	if _, found, _ := s.Recall(ctx, "7", "k1"); found {
		t.Fatalf("nothing remembered yet")
	}
	_ = s.Remember(ctx, "7", "k1", "order-1")
	if v, found, _ := s.Recall(ctx, "7", "k1"); !found || v != "order-1" {
		t.Fatalf("recall = %q found=%v", v, found)
	}

	_ = s.Release(ctx, "7", "k1")
	if ok, _ := s.TryLock(ctx, "7", "k1"); !ok {
		t.Fatalf("lock should be free after release")
	}

	now = now.Add(2 * time.Minute)
	if _, found, _ := s.Recall(ctx, "7", "k1"); found {
		t.Fatalf("value should expire")
	}
	if ok, _ := s.TryLock(ctx, "8", "k1"); !ok {
		t.Fatalf("expired lock should be reclaimable")
	}
}

// Runs against a real server when QUICKDELIVER_TEST_REDIS is set (e.g. localhost:6379).
func TestRedisIdempotencyStore(t *testing.T) {
	addr := os.Getenv("QUICKDELIVER_TEST_REDIS")
	if addr == "" {
		t.Skip("QUICKDELIVER_TEST_REDIS not set")
	}
	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewRedisIdempotencyStore(rdb, time.Minute)
	key := uuid.NewString()

	if ok, err := s.TryLock(ctx, "test", key); err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	if ok, _ := s.TryLock(ctx, "test", key); ok {
		t.Fatalf("second lock should fail")
	}
	if err := s.Remember(ctx, "test", key, "order-9"); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if v, found, err := s.Recall(ctx, "test", key); err != nil || !found || v != "order-9" {
		t.Fatalf("Recall = %q %v %v", v, found, err)
	}
	if err := s.Release(ctx, "test", key); err != nil {
		t.Fatalf("Release: %v", err)
	}
}
