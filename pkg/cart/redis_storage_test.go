package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisStorageRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	storage := NewRedisStorage(redis.Addr(), "", "", 0)
	ctx := context.Background()

	if _, ok, err := storage.Load(ctx); err != nil || ok {
		t.Fatalf("fresh storage load: ok=%v err=%v", ok, err)
	}

	doc := []byte(`{"items":[{"id":"1","price":10,"quantity":2}]}`)
	if err := storage.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, ok, err := storage.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(data) != string(doc) {
		t.Fatalf("round trip mismatch: %s", data)
	}

	if err := storage.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := storage.Load(ctx); ok {
		t.Fatalf("document survived clear")
	}
}

func TestRedisStorageUsesConfiguredKeyAndTTL(t *testing.T) {
	redis := miniredis.RunT(t)
	storage := NewRedisStorage(redis.Addr(), "", "storefront:cart:test", time.Minute)

	if err := storage.Save(context.Background(), []byte(`{"items":[]}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !redis.Exists("storefront:cart:test") {
		t.Fatalf("document not stored under configured key")
	}
	if ttl := redis.TTL("storefront:cart:test"); ttl != time.Minute {
		t.Fatalf("ttl = %v, want %v", ttl, time.Minute)
	}
}

func TestRedisStorageCorruptedValueFallsBackToEmptyStore(t *testing.T) {
	redis := miniredis.RunT(t)
	if err := redis.Set(defaultRedisKey, "{not json"); err != nil {
		t.Fatalf("seed corrupted value: %v", err)
	}
	storage := NewRedisStorage(redis.Addr(), "", "", 0)

	s := New(storage)
	if len(s.Items()) != 0 || s.Total() != 0 || s.ItemCount() != 0 {
		t.Fatalf("store not empty after corrupted value: %+v", s.Snapshot())
	}
	if redis.Exists(defaultRedisKey) {
		t.Fatalf("corrupted key was not cleared")
	}
}

func TestStoreRoundTripThroughRedis(t *testing.T) {
	redis := miniredis.RunT(t)
	storage := NewRedisStorage(redis.Addr(), "", "", 0)

	s := New(storage)
	s.AddToCart(book("1", 20, 5), 3)
	s.UpdateQuantity("1", 5)

	reloaded := New(NewRedisStorage(redis.Addr(), "", "", 0))
	if got := reloaded.GetItemQuantity("1"); got != 5 {
		t.Fatalf("reloaded quantity = %d, want 5", got)
	}
	if got := reloaded.Total(); got != 100 {
		t.Fatalf("reloaded total = %v, want 100", got)
	}
}
