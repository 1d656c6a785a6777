package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestLimiter(t *testing.T, srv *miniredis.Miniredis, limit int) *FixedWindowLimiter {
	t.Helper()
	limiter, err := New(Config{
		Addr:   srv.Addr(),
		Prefix: "test:ratelimit",
		Limit:  limit,
		Window: time.Minute,
	})
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	return limiter
}

func TestFixedWindowLimiterEnforcesQuota(t *testing.T) {
	srv := miniredis.RunT(t)
	limiter := newTestLimiter(t, srv, 2)

	for i := 0; i < 2; i++ {
		if !limiter.Allow("ip-1") {
			t.Fatalf("request %d should pass", i)
		}
	}
	if limiter.Allow("ip-1") {
		t.Fatalf("request over quota should be blocked")
	}
	// Other keys have their own window.
	if !limiter.Allow("ip-2") {
		t.Fatalf("distinct key must not share quota")
	}
}

func TestFixedWindowLimiterFailsClosed(t *testing.T) {
	srv := miniredis.RunT(t)
	limiter := newTestLimiter(t, srv, 1)
	srv.Close()
	if limiter.Allow("ip-1") {
		t.Fatalf("limiter should fail closed when redis is down")
	}
}

func TestFixedWindowLimiterConfigValidation(t *testing.T) {
	if _, err := New(Config{Limit: 1, Window: time.Second}); err == nil {
		t.Fatalf("expected error for missing redis addr")
	}
	if _, err := New(Config{Addr: "localhost:6379", Window: time.Second}); err == nil {
		t.Fatalf("expected error for non-positive limit")
	}
	if _, err := New(Config{Addr: "localhost:6379", Limit: 1}); err == nil {
		t.Fatalf("expected error for non-positive window")
	}
}
