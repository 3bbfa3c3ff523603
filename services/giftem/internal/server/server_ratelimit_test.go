package server

import (
	"net/http"
	"testing"

	"giftem/services/giftem/internal/app"
	"github.com/alicebob/miniredis/v2"
)

func TestProductMutationRateLimit(t *testing.T) {
	redis := miniredis.RunT(t)
	core, err := app.New(app.Config{Rand: fixedRand(1)})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv, err := New(Config{
		App:                        core,
		RedisAddr:                  redis.Addr(),
		MutationRateLimitPerMinute: 1,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	h := srv.Router()

	if rec := do(t, h, http.MethodPost, "/api/products/reset", ""); rec.Code != http.StatusOK {
		t.Fatalf("first reset = %d, want 200", rec.Code)
	}
	rec := do(t, h, http.MethodDelete, "/api/products", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second mutation = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
	if rec := do(t, h, http.MethodGet, "/api/products", ""); rec.Code != http.StatusOK {
		t.Fatalf("reads must not be limited, got %d", rec.Code)
	}
}

func TestServerRequiresRedisForRateLimit(t *testing.T) {
	core, err := app.New(app.Config{})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if _, err := New(Config{App: core, MutationRateLimitPerMinute: 1}); err == nil {
		t.Fatalf("expected limiter initialization to fail without redis addr")
	}
}

func TestServerRejectsBadTrustedProxy(t *testing.T) {
	core, err := app.New(app.Config{})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if _, err := New(Config{App: core, TrustedProxyCIDRs: []string{"not-a-cidr"}}); err == nil {
		t.Fatalf("expected error for invalid trusted proxy")
	}
}
