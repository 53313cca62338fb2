package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := New("redis://" + mr.Addr())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	return r, mr
}

func TestGetSetDel(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	if _, err := Get[string](ctx, r, Key("x")); !errors.Is(err, ErrMiss) {
		t.Fatalf("err = %v, want ErrMiss", err)
	}
	if err := Set(ctx, r, Key("x"), []int{1, 2}, time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err := Get[[]int](ctx, r, Key("x"))
	if err != nil || len(got) != 2 || got[1] != 2 {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if err := Del(ctx, r, Key("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := Get[[]int](ctx, r, Key("x")); !errors.Is(err, ErrMiss) {
		t.Errorf("after Del: err = %v", err)
	}
}

func TestDelPattern(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()
	for _, k := range []string{Key("channel", "a"), Key("channel", "b"), Key("playlist", "a")} {
		if err := Set(ctx, r, k, 1, time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	if err := DelPattern(ctx, r, Key("channel", "*")); err != nil {
		t.Fatal(err)
	}
	if keys := mr.Keys(); len(keys) != 1 || keys[0] != Key("playlist", "a") {
		t.Errorf("keys = %v", keys)
	}
}

func TestTryLock(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()
	key := RefreshLockKey("pl_1")

	unlock, err := TryLock(ctx, r, key, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := TryLock(ctx, r, key, time.Minute); !errors.Is(err, ErrLocked) {
		t.Fatalf("second lock: err = %v, want ErrLocked", err)
	}
	unlock()
	unlock2, err := TryLock(ctx, r, key, time.Minute)
	if err != nil {
		t.Fatalf("lock after unlock: %v", err)
	}
	unlock2()
	if mr.Exists(key) {
		t.Error("key left after unlock")
	}
}

func TestTryLockExpiredHolder(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()
	key := RefreshLockKey("pl_1")

	stale, err := TryLock(ctx, r, key, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Second)
	if _, err := TryLock(ctx, r, key, time.Minute); err != nil {
		t.Fatalf("lock after expiry: %v", err)
	}
	// the first holder no longer owns the key and must not release it
	stale()
	if !mr.Exists(key) {
		t.Error("stale unlock removed the new holder's lock")
	}
}

func TestQueueRoundTrip(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"pl_1", ""} {
		if err := Enqueue(ctx, r, RefreshQueue, RefreshJob{PlaylistID: id, Requested: at}); err != nil {
			t.Fatal(err)
		}
	}
	first, err := Dequeue(ctx, r, RefreshQueue, time.Second)
	if err != nil || first == nil || first.PlaylistID != "pl_1" || !first.Requested.Equal(at) {
		t.Fatalf("first = %+v, %v", first, err)
	}
	second, err := Dequeue(ctx, r, RefreshQueue, time.Second)
	if err != nil || second == nil || second.PlaylistID != "" {
		t.Fatalf("second = %+v, %v", second, err)
	}
}

func TestDequeueCancelled(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job, err := Dequeue(ctx, r, RefreshQueue, time.Second)
	if job != nil || err != nil {
		t.Errorf("Dequeue = %+v, %v, want nil, nil", job, err)
	}
}
