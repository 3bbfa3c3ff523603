package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestLimiter(t *testing.T, srv *miniredis.Miniredis, limit int) *FixedWindowLimiter {
	t.Helper()
	limiter, err := NewFixedWindowLimiter(Config{
		RedisAddr: srv.Addr(),
		Prefix:    "test:ratelimit",
		Limit:     limit,
		Window:    time.Minute,
	})
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	t.Cleanup(func() { _ = limiter.Close() })
	return limiter
}

func TestFixedWindowLimiterCountsPerKey(t *testing.T) {
	srv := miniredis.RunT(t)
	limiter := newTestLimiter(t, srv, 2)
	ctx := context.Background()

	for i, wantRemaining := range []int{1, 0} {
		d, err := limiter.Allow(ctx, "ip-1")
		if err != nil {
			t.Fatalf("allow #%d: %v", i+1, err)
		}
		if !d.Allowed || d.Remaining != wantRemaining {
			t.Fatalf("allow #%d = %+v, want allowed with %d remaining", i+1, d, wantRemaining)
		}
	}
	d, err := limiter.Allow(ctx, "ip-1")
	if err != nil {
		t.Fatalf("allow #3: %v", err)
	}
	if d.Allowed {
		t.Fatalf("third request should be blocked")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Fatalf("retry after = %v, want within one window", d.RetryAfter)
	}

	other, err := limiter.Allow(ctx, "ip-2")
	if err != nil || !other.Allowed {
		t.Fatalf("other key should have its own quota: %+v %v", other, err)
	}
}

func TestFixedWindowLimiterFailsClosed(t *testing.T) {
	srv := miniredis.RunT(t)
	limiter := newTestLimiter(t, srv, 1)
	srv.Close()
	d, err := limiter.Allow(context.Background(), "ip-1")
	if err == nil {
		t.Fatalf("expected error with redis down")
	}
	if d.Allowed {
		t.Fatalf("limiter should fail closed on redis errors")
	}
}

func TestNewFixedWindowLimiterValidates(t *testing.T) {
	tests := []Config{
		{Limit: 1, Window: time.Second},
		{RedisAddr: "127.0.0.1:6379", Window: time.Second},
		{RedisAddr: "127.0.0.1:6379", Limit: 1},
	}
	for _, cfg := range tests {
		if l, err := NewFixedWindowLimiter(cfg); err == nil || l != nil {
			t.Fatalf("expected constructor error for %+v", cfg)
		}
	}
}

func TestNilLimiterDenies(t *testing.T) {
	var l *FixedWindowLimiter
	if d, err := l.Allow(context.Background(), "k"); err == nil || d.Allowed {
		t.Fatalf("nil limiter should deny with error")
	}
}
