package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestKeyedLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", rps: 1, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", rps: 1, burst: 2, calls: 5, wantPass: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kl := New(tt.rps, tt.burst)
			defer kl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if kl.Allow("test") {
					passed++
				}
			}
			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedLimiter_IndependentKeys(t *testing.T) {
	kl := New(1, 1)
	defer kl.Stop()

	if !kl.Allow("a") || kl.Allow("a") {
		t.Fatal("key a should allow exactly one request")
	}
	if !kl.Allow("b") {
		t.Fatal("key b should not be affected by key a")
	}
	if kl.Keys() != 2 {
		t.Fatalf("Keys() = %d, want 2", kl.Keys())
	}
}

func TestKeyedLimiter_WaitRespectsContext(t *testing.T) {
	kl := New(0.001, 1)
	defer kl.Stop()

	if err := kl.Wait(context.Background(), "rpc"); err != nil {
		t.Fatalf("first Wait should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := kl.Wait(ctx, "rpc"); err == nil {
		t.Fatal("expected Wait to fail when the next token is beyond the deadline")
	}
}

func TestKeyedLimiter_EvictIdle(t *testing.T) {
	kl := NewWithConfig(Config{RPS: 1, Burst: 1, IdleTimeout: time.Minute})
	defer kl.Stop()

	kl.Allow("old")
	if n := kl.evictIdle(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("evictIdle removed %d, want 1", n)
	}
	if kl.Keys() != 0 {
		t.Fatalf("Keys() = %d after eviction", kl.Keys())
	}
}

func TestKeyedLimiter_Middleware(t *testing.T) {
	kl := New(1, 1)
	defer kl.Stop()

	h := kl.Middleware(func(r *http.Request) string { return r.RemoteAddr }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/attendance/refetch", nil)
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes %v", codes)
	}
}

func TestKeyedLimiter_StopIsIdempotent(t *testing.T) {
	kl := New(1, 1)
	kl.Stop()
	kl.Stop()
}
